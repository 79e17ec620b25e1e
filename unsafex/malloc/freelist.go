package malloc

// push makes page p the head of a free block of the given order
// and inserts it at the front of that order's free list.
func (a *Arena) push(p int32, order int) {
	l := &a.freeLists[order-a.minOrder]
	pg := &a.pages[p]
	pg.order = int8(order)
	pg.prev = nilPage
	pg.next = l.head
	if l.head != nilPage {
		a.pages[l.head].prev = p
	}
	l.head = p
	l.n++
}

// pop removes the first block from the free list of the given order.
// It returns nilPage if the list is empty.
func (a *Arena) pop(order int) int32 {
	p := a.freeLists[order-a.minOrder].head
	if p != nilPage {
		a.unlink(p, order)
	}
	return p
}

// unlink removes page p from the free list of the given order.
// p keeps its order, the caller decides what it heads next.
func (a *Arena) unlink(p int32, order int) {
	l := &a.freeLists[order-a.minOrder]
	pg := &a.pages[p]
	if pg.prev != nilPage {
		a.pages[pg.prev].next = pg.next
	} else {
		l.head = pg.next
	}
	if pg.next != nilPage {
		a.pages[pg.next].prev = pg.prev
	}
	pg.prev, pg.next = nilPage, nilPage
	l.n--
}

// isFreeHead reports whether page p heads a free block of the given order.
func (a *Arena) isFreeHead(p int32, order int) bool {
	return int(a.pages[p].order) == order && !a.allocated.isSet(int(p))
}

// freeCount returns the length of the free list of the given order.
func (a *Arena) freeCount(order int) int {
	return a.freeLists[order-a.minOrder].n
}

// appendFree appends the head pages of all free blocks of the given order to dst.
func (a *Arena) appendFree(dst []int32, order int) []int32 {
	for p := a.freeLists[order-a.minOrder].head; p != nilPage; p = a.pages[p].next {
		dst = append(dst, p)
	}
	return dst
}
