package malloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	a := newTestArena(t, 12, 20)
	assert.Equal(t, "0:4K 0:8K 0:16K 0:32K 0:64K 0:128K 0:256K 0:512K 1:1024K", a.Dump())

	// sizes below 1KB are printed in bytes
	small := newTestArena(t, 8, 11)
	assert.Equal(t, "0:256B 0:512B 0:1K 1:2K", small.Dump())

	_, err := small.Alloc(1)
	require.NoError(t, err)
	assert.Equal(t, "1:256B 1:512B 1:1K 0:2K", small.Dump())
}

func TestStats(t *testing.T) {
	a := newTestArena(t, 12, 20)

	for _, sz := range []int{1, 4096, 5000, 100000} {
		_, err := a.Alloc(sz)
		require.NoError(t, err)
	}
	s := a.Stats()
	assert.Equal(t, 12, s.MinOrder)
	assert.Equal(t, 20, s.MaxOrder)
	assert.Len(t, s.Free, 9)
	assert.Equal(t, 4, s.Allocated)
	assert.Equal(t, 4096+4096+8192+131072, s.AllocatedBytes)
	assert.Equal(t, a.Size(), s.FreeBytes+s.AllocatedBytes)
	assert.Equal(t, a.Available(), s.FreeBytes)

	assert.Equal(t, 0, s.FreeAt(11))
	assert.Equal(t, 0, s.FreeAt(21))
}

func TestFingerprint(t *testing.T) {
	a := newTestArena(t, 12, 20)
	initial := a.Fingerprint()
	assert.Equal(t, initial, a.Fingerprint())

	addr, err := a.Alloc(4096)
	require.NoError(t, err)
	split := a.Fingerprint()
	assert.NotEqual(t, initial, split)

	require.NoError(t, a.Free(addr))
	assert.Equal(t, initial, a.Fingerprint())

	t.Run("ListOrder", func(t *testing.T) {
		// 4 pages, all allocated: 0, 4096, 8192, 12288
		fill := func() (*Arena, []Addr) {
			a := newTestArena(t, 12, 14)
			var addrs []Addr
			for i := 0; i < 4; i++ {
				addr, err := a.Alloc(4096)
				require.NoError(t, err)
				addrs = append(addrs, addr)
			}
			return a, addrs
		}

		// same free blocks, linked in a different order
		a1, addrs1 := fill()
		require.NoError(t, a1.Free(addrs1[0]))
		require.NoError(t, a1.Free(addrs1[2]))

		a2, addrs2 := fill()
		require.NoError(t, a2.Free(addrs2[2]))
		require.NoError(t, a2.Free(addrs2[0]))

		assert.Equal(t, a1.Fingerprint(), a2.Fingerprint())
		assert.Equal(t, a1.Dump(), a2.Dump())

		require.NoError(t, a2.Free(addrs2[1]))
		assert.NotEqual(t, a1.Fingerprint(), a2.Fingerprint())
	})
}

func BenchmarkFingerprint(b *testing.B) {
	a := newTestArena(b, 12, 20)
	for i := 0; i < 64; i++ {
		if _, err := a.Alloc(4096); err != nil {
			b.Fatal(err)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Fingerprint()
	}
}
