// Package verify cross-checks a stabbing index against an independent
// interval tree built from the same intervals.
package verify

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/biogo/store/interval"

	"github.com/drtconway/stabby"
)

// ErrOutOfRange is returned when an interval endpoint cannot be represented
// in the reference tree's int coordinates.
var ErrOutOfRange = errors.New("interval endpoint out of range for reference tree")

// Mismatch records a query whose results differ between the index and the
// reference tree.
type Mismatch struct {
	Query stabby.Interval
	Point bool // Query was a single-position stab
	Want  []stabby.Interval
	Got   []stabby.Interval
}

func (m Mismatch) String() string {
	kind := "range"
	if m.Point {
		kind = "point"
	}
	return fmt.Sprintf("%s %s: want %v, got %v", kind, m.Query, m.Want, m.Got)
}

// Report summarises a verification run.
type Report struct {
	Points     int
	Ranges     int
	Mismatches []Mismatch
}

// OK reports whether every query agreed.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Integer-specific closed intervals stored half-open in the tree.
type irange struct {
	Start, End int
	UID        uintptr
}

func (i irange) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}
func (i irange) ID() uintptr              { return i.UID }
func (i irange) Range() interval.IntRange { return interval.IntRange{Start: i.Start, End: i.End} }

func toRange(ivl stabby.Interval, uid uintptr) (irange, error) {
	if ivl.Last >= math.MaxInt {
		return irange{}, fmt.Errorf("%w: %s", ErrOutOfRange, ivl)
	}
	return irange{Start: int(ivl.First), End: int(ivl.Last) + 1, UID: uid}, nil
}

// Oracle answers stabbing queries with a biogo interval tree.
type Oracle struct {
	tree interval.IntTree
}

// NewOracle builds the reference tree. Duplicate intervals are kept.
func NewOracle(items []stabby.Interval) (*Oracle, error) {
	o := &Oracle{}
	for i, ivl := range items {
		r, err := toRange(ivl, uintptr(i))
		if err != nil {
			return nil, err
		}
		if err := o.tree.Insert(r, true); err != nil {
			return nil, fmt.Errorf("insert %s: %w", ivl, err)
		}
	}
	o.tree.AdjustRanges()
	return o, nil
}

// Len returns the number of intervals in the tree.
func (o *Oracle) Len() int {
	return o.tree.Len()
}

// StabInterval returns every interval overlapping q, sorted.
func (o *Oracle) StabInterval(q stabby.Interval) ([]stabby.Interval, error) {
	r, err := toRange(q, math.MaxUint32)
	if err != nil {
		return nil, err
	}
	var result []stabby.Interval
	for _, iv := range o.tree.Get(r) {
		rng := iv.Range()
		result = append(result, stabby.NewInterval(uint64(rng.Start), uint64(rng.End-1)))
	}
	slices.SortFunc(result, stabby.Interval.Compare)
	return result, nil
}

// Stab returns every interval containing q, sorted.
func (o *Oracle) Stab(q uint64) ([]stabby.Interval, error) {
	return o.StabInterval(stabby.NewInterval(q, q))
}

// Check runs every point and range query against both idx and o.
func Check(idx *stabby.Index, o *Oracle, points []uint64, ranges []stabby.Interval) (Report, error) {
	var rep Report
	for _, q := range points {
		want, err := o.Stab(q)
		if err != nil {
			return rep, err
		}
		rep.Points++
		if got := sorted(idx.Stab(q)); !slices.Equal(want, got) {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Query: stabby.NewInterval(q, q), Point: true, Want: want, Got: got})
		}
	}
	for _, q := range ranges {
		want, err := o.StabInterval(q)
		if err != nil {
			return rep, err
		}
		rep.Ranges++
		if got := sorted(idx.StabInterval(q)); !slices.Equal(want, got) {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Query: q, Want: want, Got: got})
		}
	}
	return rep, nil
}

func sorted(ivls []stabby.Interval) []stabby.Interval {
	if len(ivls) == 0 {
		return nil
	}
	out := slices.Clone(ivls)
	slices.SortFunc(out, stabby.Interval.Compare)
	return out
}

// Queries derives query points and ranges from items: every endpoint and
// its neighbours, plus n random points and n random ranges spanning the
// covered region.
func Queries(items []stabby.Interval, n int, seed uint64) ([]uint64, []stabby.Interval) {
	if len(items) == 0 {
		return nil, nil
	}
	lo, hi := items[0].First, items[0].Last
	seen := make(map[uint64]bool)
	var points []uint64
	addPoint := func(p uint64) {
		if !seen[p] {
			seen[p] = true
			points = append(points, p)
		}
	}
	for _, ivl := range items {
		lo, hi = min(lo, ivl.First), max(hi, ivl.Last)
		addPoint(ivl.First)
		addPoint(ivl.Last)
		if ivl.First > 0 {
			addPoint(ivl.First - 1)
		}
		if ivl.Last < math.MaxUint64 {
			addPoint(ivl.Last + 1)
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	span := hi - lo + 1
	pick := func() uint64 {
		if span == 0 {
			return rng.Uint64()
		}
		return lo + rng.Uint64N(span)
	}

	ranges := make([]stabby.Interval, 0, n)
	for range n {
		addPoint(pick())
		a, b := pick(), pick()
		ranges = append(ranges, stabby.NewInterval(min(a, b), max(a, b)))
	}
	slices.Sort(points)
	return points, ranges
}
