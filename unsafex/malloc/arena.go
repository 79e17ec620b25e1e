package malloc

import (
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMinOrder is the default minimum block order (4KB pages).
	DefaultMinOrder = 12

	// DefaultMaxOrder is the default arena order (1MB arena).
	DefaultMaxOrder = 20

	// maxOrderLimit caps the arena at 1TB.
	maxOrderLimit = 40

	// maxOrderSpan caps MaxOrder-MinOrder so that page indexes fit in int32.
	maxOrderSpan = 30
)

const (
	noOrder int8  = -1 // page is not a block head
	nilPage int32 = -1 // end of a free list
)

// Addr is the address of a block, as a byte offset from the arena origin.
type Addr int

// Option ...
type Option struct {
	// MinOrder is log2 of the page size, which is also the smallest block handed out.
	MinOrder int

	// MaxOrder is log2 of the arena size.
	MaxOrder int

	// Logger receives split and merge traces at debug level, and invalid frees at warn level.
	// logrus.StandardLogger() is used if nil.
	Logger *logrus.Logger
}

// DefaultOption returns the default values of Option: 4KB pages in a 1MB arena.
func DefaultOption() *Option {
	return &Option{
		MinOrder: DefaultMinOrder,
		MaxOrder: DefaultMaxOrder,
	}
}

// page is the metadata record of one page.
// prev and next link free block heads of the same order and are only valid
// while the page heads a free block.
type page struct {
	prev, next int32
	order      int8
}

type freeList struct {
	head int32
	n    int
}

// Arena is a binary buddy allocator managing a single arena of 2^MaxOrder bytes.
//
// Arena is not safe for concurrent use, see SyncArena.
type Arena struct {
	// arena is the memory we are managing.
	arena []byte

	// pages holds one record per 2^minOrder bytes of arena.
	pages []page

	// freeLists[o-minOrder] links the heads of all free blocks of order o.
	freeLists []freeList

	// allocated has a bit set for every page heading an allocated block.
	allocated bitmap

	// inUse is the number of bytes in allocated blocks.
	inUse int

	minOrder int
	maxOrder int

	log *logrus.Entry
}

// NewArena creates an arena as described by opt, or DefaultOption() if opt is nil.
// The whole arena starts as one free block of order MaxOrder.
func NewArena(opt *Option) (*Arena, error) {
	if opt == nil {
		opt = DefaultOption()
	}
	if opt.MinOrder < 0 {
		return nil, fmt.Errorf("MinOrder must be >= 0, got %d", opt.MinOrder)
	}
	if opt.MinOrder > opt.MaxOrder {
		return nil, fmt.Errorf("MinOrder (%d) must be <= MaxOrder (%d)", opt.MinOrder, opt.MaxOrder)
	}
	if opt.MaxOrder > maxOrderLimit {
		return nil, fmt.Errorf("MaxOrder must be <= %d, got %d", maxOrderLimit, opt.MaxOrder)
	}
	if opt.MaxOrder-opt.MinOrder > maxOrderSpan {
		return nil, fmt.Errorf("MaxOrder-MinOrder must be <= %d, got %d", maxOrderSpan, opt.MaxOrder-opt.MinOrder)
	}

	logger := opt.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	size := 1 << opt.MaxOrder
	numPages := 1 << (opt.MaxOrder - opt.MinOrder)

	a := &Arena{
		// contents are not zeroed, same as memory handed out by any other allocator here
		arena:     dirtmake.Bytes(size, size),
		pages:     make([]page, numPages),
		freeLists: make([]freeList, opt.MaxOrder-opt.MinOrder+1),
		allocated: newBitmap(numPages),
		minOrder:  opt.MinOrder,
		maxOrder:  opt.MaxOrder,
		log: logger.WithFields(logrus.Fields{
			"min_order": opt.MinOrder,
			"max_order": opt.MaxOrder,
		}),
	}
	a.Init()
	return a, nil
}

// Init resets the arena to a single free block of order MaxOrder.
// Outstanding allocations are silently discarded.
func (a *Arena) Init() {
	for i := range a.pages {
		a.pages[i] = page{prev: nilPage, next: nilPage, order: noOrder}
	}
	for i := range a.freeLists {
		a.freeLists[i] = freeList{head: nilPage}
	}
	a.allocated.reset()
	a.inUse = 0

	// the entire memory is one free block
	a.push(0, a.maxOrder)
}

// Reset is the same as Init.
func (a *Arena) Reset() {
	a.Init()
}

// MinOrder returns log2 of the page size.
func (a *Arena) MinOrder() int { return a.minOrder }

// MaxOrder returns log2 of the arena size.
func (a *Arena) MaxOrder() int { return a.maxOrder }

// Size returns the arena size in bytes.
func (a *Arena) Size() int { return len(a.arena) }

// PageSize returns the size of the smallest block.
func (a *Arena) PageSize() int { return 1 << a.minOrder }

// OrderToBytes returns the size of a block of the given order.
func OrderToBytes(order int) int {
	return 1 << order
}

// BytesToOrder returns the smallest order in [MinOrder, MaxOrder] whose blocks can hold size bytes,
// or -1 if size < 1 or size > 2^MaxOrder.
func (a *Arena) BytesToOrder(size int) int {
	if size < 1 || size > len(a.arena) {
		return -1
	}
	order := a.minOrder
	for OrderToBytes(order) < size {
		order++
	}
	return order
}

// IsValidAddr checks if addr could be a block head: inside the arena and page aligned.
// It does not check the allocation state.
func (a *Arena) IsValidAddr(addr Addr) bool {
	return addr >= 0 && int(addr) < len(a.arena) && int(addr)&(a.PageSize()-1) == 0
}

func (a *Arena) addrOf(p int32) Addr {
	return Addr(int(p) << a.minOrder)
}

func (a *Arena) pageOf(addr Addr) int32 {
	return int32(int(addr) >> a.minOrder)
}
