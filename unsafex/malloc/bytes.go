package malloc

import "github.com/cloudwego/buddyarena/unsafex"

// Bytes returns the memory of the allocated block at addr, with len and cap equal to the block size.
// It returns nil if addr is not an allocated block.
// The memory may not be initialized with zeros.
func (a *Arena) Bytes(addr Addr) []byte {
	size := a.BlockSize(addr)
	if size == 0 {
		return nil
	}
	end := int(addr) + size
	return a.arena[addr:end:end]
}

// AllocBytes allocates a block of at least `size` bytes.
// It returns a slice with len == size and cap == block size,
// or nil if the allocation fails.
func (a *Arena) AllocBytes(size int) []byte {
	addr, err := a.Alloc(size)
	if err != nil {
		return nil
	}
	return a.Bytes(addr)[:size]
}

// FreeBytes returns a block of memory returned by AllocBytes or Bytes to the arena.
// nil or zero-cap slices are ignored.
// Panics if the block doesn't belong to this arena or is not an allocated block.
//
// IMPORTANT: The block must start where the slice returned by AllocBytes starts.
// Do not reslice (e.g., block[n:]) before calling FreeBytes.
func (a *Arena) FreeBytes(block []byte) {
	if cap(block) == 0 {
		return
	}
	offset, ok := unsafex.SliceOffset(a.arena, block)
	if !ok {
		panic("buddy: block not in arena")
	}
	if a.Free(Addr(offset)) != nil {
		panic("buddy: double free or invalid block")
	}
}
