package malloc

import "sync"

var (
	defaultOnce  sync.Once
	defaultArena *SyncArena
)

// getDefaultArena builds the default arena on first use.
func getDefaultArena() *SyncArena {
	defaultOnce.Do(func() {
		defaultArena = mustNewSyncArena(DefaultOption())
	})
	return defaultArena
}

func mustNewSyncArena(opt *Option) *SyncArena {
	s, err := NewSyncArena(opt)
	if err != nil {
		panic(err)
	}
	return s
}

// Init resets the default arena (4KB pages, 1MB) to a single free block.
// Outstanding allocations of the default arena are discarded.
func Init() {
	getDefaultArena().Init()
}

// Alloc allocates a block of at least size bytes from the default arena.
func Alloc(size int) (Addr, error) {
	return getDefaultArena().Alloc(size)
}

// Free returns a block to the default arena.
func Free(addr Addr) error {
	return getDefaultArena().Free(addr)
}

// Dump returns the free block counts of the default arena, see (*Arena).Dump.
func Dump() string {
	return getDefaultArena().Dump()
}
