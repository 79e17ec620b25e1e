package malloc

import "github.com/sirupsen/logrus"

// Alloc allocates a block of at least size bytes and returns its address.
//
// It returns ErrInvalidSize if size is not in [1, 2^MaxOrder],
// or ErrNoSpace if no sufficiently large block is free.
// The returned address is aligned to the block size relative to the arena origin.
func (a *Arena) Alloc(size int) (Addr, error) {
	order := a.BytesToOrder(size)
	if order < 0 {
		return 0, ErrInvalidSize
	}

	// Fast path: exact order match
	p := a.pop(order)
	if p == nilPage {
		if p = a.allocSlow(order); p == nilPage {
			return 0, ErrNoSpace
		}
	}

	a.pages[p].order = int8(order)
	a.allocated.set(int(p))
	a.inUse += OrderToBytes(order)
	return a.addrOf(p), nil
}

// allocSlow takes a block from the smallest non-empty free list above order
// and splits it down to order. It returns nilPage if there is none.
func (a *Arena) allocSlow(order int) int32 {
	foundOrder := -1
	for o := order + 1; o <= a.maxOrder; o++ {
		if a.freeCount(o) > 0 {
			foundOrder = o
			break
		}
	}
	if foundOrder == -1 {
		return nilPage
	}

	p := a.pop(foundOrder)

	// Split until we reach required order.
	// The lower half keeps p, the upper half goes to the free list of the new (lower) order.
	for foundOrder > order {
		foundOrder--
		upper := p + int32(1)<<(foundOrder-a.minOrder)
		a.push(upper, foundOrder)
		if a.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
			a.log.Debugf("split: block %#x order %d, free buddy %#x order %d",
				int(a.addrOf(p)), foundOrder+1, int(a.addrOf(upper)), foundOrder)
		}
	}
	return p
}

// Free returns the block at addr to the arena and merges it with its buddy
// for as long as the buddy is free, so no two free buddies are ever left behind.
//
// It returns ErrInvalidFree without touching the arena if addr does not head
// an allocated block, which covers double frees.
func (a *Arena) Free(addr Addr) error {
	p, ok := a.allocatedHead(addr)
	if !ok {
		a.log.Warnf("free: %#x is not an allocated block", int(addr))
		return ErrInvalidFree
	}

	order := int(a.pages[p].order)
	a.allocated.unset(int(p))
	a.inUse -= OrderToBytes(order)

	// The whole arena has no buddy.
	for order < a.maxOrder {
		buddy := p ^ int32(1)<<(order-a.minOrder)
		if !a.isFreeHead(buddy, order) {
			break
		}
		a.unlink(buddy, order)
		if buddy < p {
			p, buddy = buddy, p
		}
		a.pages[buddy].order = noOrder
		order++
		if a.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
			a.log.Debugf("merge: block %#x order %d", int(a.addrOf(p)), order)
		}
	}

	a.push(p, order)
	return nil
}

// BlockSize returns the size of the allocated block at addr, or 0 if addr is not one.
func (a *Arena) BlockSize(addr Addr) int {
	p, ok := a.allocatedHead(addr)
	if !ok {
		return 0
	}
	return OrderToBytes(int(a.pages[p].order))
}

// Allocations calls fn for every allocated block in address order until fn returns false.
// fn must not alloc or free.
func (a *Arena) Allocations(fn func(addr Addr, size int) bool) {
	for p := a.allocated.next(0); p >= 0; p = a.allocated.next(p + 1) {
		if !fn(a.addrOf(int32(p)), OrderToBytes(int(a.pages[p].order))) {
			return
		}
	}
}

func (a *Arena) allocatedHead(addr Addr) (int32, bool) {
	if !a.IsValidAddr(addr) {
		return nilPage, false
	}
	p := a.pageOf(addr)
	if a.pages[p].order == noOrder || !a.allocated.isSet(int(p)) {
		return nilPage, false
	}
	return p, true
}
