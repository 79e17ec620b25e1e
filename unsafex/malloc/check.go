package malloc

import "fmt"

// Check verifies the arena's metadata and returns an error describing the first
// inconsistency found:
//   - blocks tile the whole arena without overlapping, each aligned to its size
//   - a page is in the free list of order o iff it heads a free block of order o
//   - no two free buddies exist
//   - free and allocated bytes add up to the arena size
//
// Check walks every page, it is meant for tests and diagnostics.
func (a *Arena) Check() error {
	numPages := int32(len(a.pages))
	freeHeads, freeBytes, usedBytes := 0, 0, 0

	for p := int32(0); p < numPages; {
		order := int(a.pages[p].order)
		if a.pages[p].order == noOrder {
			return fmt.Errorf("buddy: page %d is not covered by any block", p)
		}
		if order < a.minOrder || order > a.maxOrder {
			return fmt.Errorf("buddy: block %d has invalid order %d", p, order)
		}
		span := int32(1) << (order - a.minOrder)
		if p%span != 0 {
			return fmt.Errorf("buddy: block %d of order %d is misaligned", p, order)
		}
		if p+span > numPages {
			return fmt.Errorf("buddy: block %d of order %d overruns the arena", p, order)
		}
		for q := p + 1; q < p+span; q++ {
			if a.pages[q].order != noOrder || a.allocated.isSet(int(q)) {
				return fmt.Errorf("buddy: page %d overlaps block %d of order %d", q, p, order)
			}
		}

		if a.allocated.isSet(int(p)) {
			usedBytes += OrderToBytes(order)
		} else {
			freeHeads++
			freeBytes += OrderToBytes(order)
			if order < a.maxOrder && a.isFreeHead(p^span, order) {
				return fmt.Errorf("buddy: free buddies %d and %d of order %d are not merged", p, p^span, order)
			}
		}
		p += span
	}

	listed := 0
	for o := a.minOrder; o <= a.maxOrder; o++ {
		l := a.freeLists[o-a.minOrder]
		n, prev := 0, nilPage
		for p := l.head; p != nilPage; p = a.pages[p].next {
			if p < 0 || p >= numPages {
				return fmt.Errorf("buddy: free list %d links to page %d outside the arena", o, p)
			}
			if !a.isFreeHead(p, o) {
				return fmt.Errorf("buddy: free list %d holds page %d which is not a free block of that order", o, p)
			}
			if a.pages[p].prev != prev {
				return fmt.Errorf("buddy: free list %d has a broken back link at page %d", o, p)
			}
			if n++; n > len(a.pages) {
				return fmt.Errorf("buddy: free list %d has a cycle", o)
			}
			prev = p
		}
		if n != l.n {
			return fmt.Errorf("buddy: free list %d has %d blocks, counted %d", o, n, l.n)
		}
		listed += n
	}
	if listed != freeHeads {
		return fmt.Errorf("buddy: %d free blocks but %d listed", freeHeads, listed)
	}

	if usedBytes != a.inUse {
		return fmt.Errorf("buddy: %d bytes in allocated blocks, accounted %d", usedBytes, a.inUse)
	}
	if freeBytes+usedBytes != len(a.arena) {
		return fmt.Errorf("buddy: free %d + allocated %d bytes != arena size %d", freeBytes, usedBytes, len(a.arena))
	}
	return nil
}
