package malloc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpace indicates that no free block of the requested order or larger exists.
	ErrNoSpace = errors.New("buddy: no space")

	// ErrInvalidSize is returned by Alloc for sizes outside [1, 2^MaxOrder].
	// It wraps ErrNoSpace: callers checking errors.Is(err, ErrNoSpace) see both as a failed allocation.
	ErrInvalidSize = fmt.Errorf("%w: invalid size", ErrNoSpace)

	// ErrInvalidFree indicates an address that does not head a currently allocated block,
	// e.g. a double free, a foreign address or an address in the middle of a block.
	ErrInvalidFree = errors.New("buddy: invalid free")
)
