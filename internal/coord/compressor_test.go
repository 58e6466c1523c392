package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var builders = []struct {
	name  string
	build Builder
}{
	{"roaring", NewRoaring},
	{"sorted", NewSorted},
}

func TestRankSelect(t *testing.T) {
	xs := []uint64{0, 10, 20, 30}
	for _, b := range builders {
		t.Run(b.name, func(t *testing.T) {
			rs := b.build(xs)
			assert.Equal(t, uint64(4), rs.Len())

			assert.Equal(t, uint64(0), rs.Rank(0))
			assert.Equal(t, uint64(1), rs.Rank(1))
			assert.Equal(t, uint64(1), rs.Rank(10))
			assert.Equal(t, uint64(2), rs.Rank(11))
			assert.Equal(t, uint64(4), rs.Rank(31))
			assert.Equal(t, uint64(4), rs.Rank(math.MaxUint64))

			assert.Equal(t, uint64(0), rs.Select(0))
			assert.Equal(t, uint64(20), rs.Select(2))
			assert.Equal(t, uint64(30), rs.Select(3))
			assert.Equal(t, uint64(30), rs.Select(99), "past the end clamps")
		})
	}
}

func TestCompressor_ToDense(t *testing.T) {
	tests := []struct {
		x    uint64
		want int
	}{
		{0, 0},
		{5, 1},
		{10, 2},
		{15, 3},
		{20, 4},
		{29, 5},
		{30, 6},
		{31, 7},
		{math.MaxUint64, 7},
	}

	for _, b := range builders {
		c := New([]uint64{30, 10, 20, 10}, b.build)
		assert.Equal(t, 4, c.Len(), b.name)
		assert.Equal(t, 6, c.Bound(), b.name)
		for _, tt := range tests {
			assert.Equal(t, tt.want, c.ToDense(tt.x), "%s: ToDense(%d)", b.name, tt.x)
		}
	}
}

func TestCompressor_ToSparse(t *testing.T) {
	c := New([]uint64{10, 20, 30}, nil)

	assert.Equal(t, uint64(0), c.ToSparse(0))
	assert.Equal(t, uint64(0), c.ToSparse(1), "odd index resolves to the boundary below")
	assert.Equal(t, uint64(10), c.ToSparse(2))
	assert.Equal(t, uint64(10), c.ToSparse(3))
	assert.Equal(t, uint64(30), c.ToSparse(6))
}

func TestCompressor_RoundTrip(t *testing.T) {
	points := []uint64{45329163, 45329437, 45330516, 45330557, 1, 7, math.MaxUint64 - 1}
	for _, b := range builders {
		c := New(points, b.build)
		for _, x := range append(points, 0) {
			assert.True(t, c.IsBoundary(x), "%s: %d", b.name, x)
			d := c.ToDense(x)
			assert.Equal(t, 0, d%2, "%s: boundary %d maps to an even index", b.name, x)
			assert.Equal(t, x, c.ToSparse(d), "%s: round trip of %d", b.name, x)
		}
	}
}

func TestCompressor_MaxUint64(t *testing.T) {
	for _, b := range builders {
		c := New([]uint64{math.MaxUint64}, b.build)
		assert.True(t, c.IsBoundary(math.MaxUint64), b.name)
		assert.Equal(t, 2, c.ToDense(math.MaxUint64), b.name)
		assert.Equal(t, uint64(math.MaxUint64), c.ToSparse(2), b.name)
		assert.Equal(t, 1, c.ToDense(math.MaxUint64-1), b.name)
	}
}

func TestCompressor_Empty(t *testing.T) {
	c := New(nil, nil)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.Bound())
	assert.Equal(t, 0, c.ToDense(0))
	assert.Equal(t, 1, c.ToDense(100), "anything above the sentinel is past the bound")
}
