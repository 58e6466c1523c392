// Package coord compresses a sparse uint64 coordinate space into a dense
// index space that preserves the order of every known interval endpoint.
package coord

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// RankSelect answers rank and select queries over a fixed set of
// coordinates.
type RankSelect interface {
	// Rank returns the number of coordinates strictly less than x.
	Rank(x uint64) uint64
	// Select returns the i-th smallest coordinate (0-indexed). Indices past
	// the end return the largest coordinate.
	Select(i uint64) uint64
	// Len returns the number of coordinates.
	Len() uint64
}

// Builder creates a RankSelect from sorted, distinct coordinates.
type Builder func(sorted []uint64) RankSelect

// roaringRankSelect is a RankSelect over a compressed 64-bit roaring bitmap.
type roaringRankSelect struct {
	bm *roaring64.Bitmap
	n  uint64
}

// NewRoaring builds a RankSelect backed by a roaring64 bitmap.
func NewRoaring(sorted []uint64) RankSelect {
	bm := roaring64.New()
	bm.AddMany(sorted)
	bm.RunOptimize()
	return &roaringRankSelect{bm: bm, n: bm.GetCardinality()}
}

func (r *roaringRankSelect) Rank(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	// roaring counts members <= x.
	return r.bm.Rank(x - 1)
}

func (r *roaringRankSelect) Select(i uint64) uint64 {
	if r.n == 0 {
		return 0
	}
	if i >= r.n {
		i = r.n - 1
	}
	v, err := r.bm.Select(i)
	if err != nil {
		return r.bm.Maximum()
	}
	return v
}

func (r *roaringRankSelect) Len() uint64 {
	return r.n
}

// sortedRankSelect answers rank by binary search over a sorted slice.
type sortedRankSelect struct {
	xs []uint64
}

// NewSorted builds a RankSelect over a plain sorted slice. The slice is
// retained, not copied.
func NewSorted(sorted []uint64) RankSelect {
	return &sortedRankSelect{xs: sorted}
}

func (s *sortedRankSelect) Rank(x uint64) uint64 {
	return uint64(sort.Search(len(s.xs), func(i int) bool { return s.xs[i] >= x }))
}

func (s *sortedRankSelect) Select(i uint64) uint64 {
	if len(s.xs) == 0 {
		return 0
	}
	if i >= uint64(len(s.xs)) {
		return s.xs[len(s.xs)-1]
	}
	return s.xs[i]
}

func (s *sortedRankSelect) Len() uint64 {
	return uint64(len(s.xs))
}
