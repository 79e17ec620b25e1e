package malloc

import "math/bits"

// bitmap is a fixed size set of page indexes, one bit per page.
type bitmap []uint64

func newBitmap(n int) bitmap {
	return make(bitmap, (n+63)>>6)
}

// isSet returns true if bit i is set.
func (b bitmap) isSet(i int) bool {
	return b[i>>6]&(1<<(uint(i)&63)) != 0
}

func (b bitmap) set(i int) {
	b[i>>6] |= 1 << (uint(i) & 63)
}

func (b bitmap) unset(i int) {
	b[i>>6] &^= 1 << (uint(i) & 63)
}

func (b bitmap) reset() {
	for i := range b {
		b[i] = 0
	}
}

// count returns the number of set bits.
func (b bitmap) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// next returns the index of the first set bit >= i, or -1 if there is none.
// Scans 64-bit words using TrailingZeros64.
func (b bitmap) next(i int) int {
	if i < 0 {
		i = 0
	}
	w := i >> 6
	if w >= len(b) {
		return -1
	}

	// Handle partial first word
	if v := b[w] >> (uint(i) & 63); v != 0 {
		return i + bits.TrailingZeros64(v)
	}

	for w++; w < len(b); w++ {
		if b[w] != 0 {
			return w<<6 + bits.TrailingZeros64(b[w])
		}
	}
	return -1
}
