package malloc

import (
	"encoding/binary"
	"slices"
	"strconv"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"
	"github.com/bytedance/gopkg/util/xxhash3"

	"github.com/cloudwego/buddyarena/unsafex"
)

// Stats is a point-in-time summary of an arena.
type Stats struct {
	MinOrder int
	MaxOrder int

	// Free[i] is the number of free blocks of order MinOrder+i.
	Free []int

	// FreeBytes is the total size of free blocks.
	FreeBytes int

	// AllocatedBytes is the total size of allocated blocks.
	// FreeBytes + AllocatedBytes is always the arena size.
	AllocatedBytes int

	// Allocated is the number of allocated blocks.
	Allocated int
}

// FreeAt returns the number of free blocks of the given order.
func (s Stats) FreeAt(order int) int {
	if order < s.MinOrder || order > s.MaxOrder {
		return 0
	}
	return s.Free[order-s.MinOrder]
}

// Stats returns the current Stats of the arena.
func (a *Arena) Stats() Stats {
	s := Stats{
		MinOrder:       a.minOrder,
		MaxOrder:       a.maxOrder,
		Free:           make([]int, len(a.freeLists)),
		AllocatedBytes: a.inUse,
		Allocated:      a.allocated.count(),
	}
	for i, l := range a.freeLists {
		s.Free[i] = l.n
		s.FreeBytes += l.n << (a.minOrder + i)
	}
	return s
}

// Available returns the total free bytes, which may be spread over many blocks.
func (a *Arena) Available() int {
	return len(a.arena) - a.inUse
}

// Dump returns the number of free blocks of each order, smallest first, e.g.
//
//	0:4K 1:8K 1:16K 1:32K 1:64K 1:128K 1:256K 1:512K 0:1024K
func (a *Arena) Dump() string {
	buf := dirtmake.Bytes(0, len(a.freeLists)*16)
	for o := a.minOrder; o <= a.maxOrder; o++ {
		if o > a.minOrder {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(a.freeCount(o)), 10)
		buf = append(buf, ':')
		buf = appendSize(buf, OrderToBytes(o))
	}
	// buf is never touched again
	return unsafex.BinaryToString(buf)
}

func appendSize(b []byte, size int) []byte {
	if size < 1<<10 {
		return append(strconv.AppendInt(b, int64(size), 10), 'B')
	}
	return append(strconv.AppendInt(b, int64(size>>10), 10), 'K')
}

// Fingerprint returns a hash of the free-list table. States of the same arena
// with the same free blocks have equal fingerprints, regardless of the order of
// blocks within a free list, so different fingerprints mean different states.
func (a *Arena) Fingerprint() uint64 {
	n := 0
	for _, l := range a.freeLists {
		n += 2 + l.n
	}
	buf := mcache.Malloc(0, n*4)
	defer mcache.Free(buf)

	var heads []int32
	for o := a.minOrder; o <= a.maxOrder; o++ {
		heads = a.appendFree(heads[:0], o)
		slices.Sort(heads)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(o))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(heads)))
		for _, p := range heads {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(p))
		}
	}
	return xxhash3.Hash(buf)
}
