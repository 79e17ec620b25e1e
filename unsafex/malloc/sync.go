package malloc

import "sync"

// SyncArena is an Arena safe for concurrent use.
// All operations are serialized behind one mutex, so a split or a merge
// is never observed half done.
type SyncArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSyncArena creates a SyncArena, see NewArena.
func NewSyncArena(opt *Option) (*SyncArena, error) {
	a, err := NewArena(opt)
	if err != nil {
		return nil, err
	}
	return &SyncArena{a: a}, nil
}

// Init ...
func (s *SyncArena) Init() {
	s.mu.Lock()
	s.a.Init()
	s.mu.Unlock()
}

// Alloc ...
func (s *SyncArena) Alloc(size int) (Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(size)
}

// Free ...
func (s *SyncArena) Free(addr Addr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free(addr)
}

// AllocBytes ...
func (s *SyncArena) AllocBytes(size int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocBytes(size)
}

// FreeBytes ...
func (s *SyncArena) FreeBytes(block []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.FreeBytes(block)
}

// Bytes ...
func (s *SyncArena) Bytes(addr Addr) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Bytes(addr)
}

// BytesToOrder ...
func (s *SyncArena) BytesToOrder(size int) int {
	// min and max orders never change
	return s.a.BytesToOrder(size)
}

// Dump ...
func (s *SyncArena) Dump() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Dump()
}

// Stats ...
func (s *SyncArena) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Stats()
}

// Available ...
func (s *SyncArena) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Available()
}

// Fingerprint ...
func (s *SyncArena) Fingerprint() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Fingerprint()
}

// Check ...
func (s *SyncArena) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Check()
}
