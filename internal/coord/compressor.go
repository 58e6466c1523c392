package coord

import (
	"math"
	"slices"
)

// Compressor maps sparse coordinates to dense indices and back.
//
// Every built coordinate c maps to the even index 2*rank(c). A coordinate
// strictly between two built coordinates maps to the odd index just below
// the next built one, so ordering between query points and endpoints is
// preserved. Coordinate 0 is always built, which keeps odd indices >= 1.
type Compressor struct {
	rs RankSelect
}

// New builds a Compressor over points plus the 0 sentinel. points may be
// unsorted and contain duplicates. A nil build uses NewRoaring.
func New(points []uint64, build Builder) *Compressor {
	if build == nil {
		build = NewRoaring
	}

	xs := make([]uint64, 0, len(points)+1)
	xs = append(xs, 0)
	xs = append(xs, points...)
	slices.Sort(xs)
	xs = slices.Compact(xs)

	return &Compressor{rs: build(xs)}
}

// Len returns the number of distinct built coordinates, the sentinel
// included.
func (c *Compressor) Len() int {
	return int(c.rs.Len())
}

// Bound returns the dense index of the largest built coordinate.
func (c *Compressor) Bound() int {
	return 2 * (c.Len() - 1)
}

// IsBoundary reports whether x is one of the built coordinates.
func (c *Compressor) IsBoundary(x uint64) bool {
	r1 := c.rs.Rank(x)
	if x == math.MaxUint64 {
		return r1 < c.rs.Len() && c.rs.Select(r1) == x
	}
	return c.rs.Rank(x+1) != r1
}

// ToDense returns the dense index of x.
func (c *Compressor) ToDense(x uint64) int {
	r := int(c.rs.Rank(x))
	if c.IsBoundary(x) {
		return 2 * r
	}
	return 2*r - 1
}

// ToSparse returns the built coordinate at or below dense index y. The
// parity bit is dropped, so odd indices resolve to the boundary below.
func (c *Compressor) ToSparse(y int) uint64 {
	if y < 0 {
		y = 0
	}
	return c.rs.Select(uint64(y / 2))
}
