// Package stabby is a static interval index answering stabbing queries:
// which of a fixed collection of closed intervals contain a point, or
// overlap a query interval.
//
// The index follows Schmidt, "Interval stabbing problems in small integer
// ranges" (ISAAC 2009). Interval endpoints, which may be sparse over the
// whole uint64 range (genomic coordinates, for instance), are first
// compressed into a dense domain with a rank/select structure; the
// containment forest is then built over that dense domain.
//
//	idx := stabby.New([]stabby.Interval{
//		stabby.NewInterval(45_331_182, 45_331_334),
//		stabby.NewInterval(45_331_420, 45_331_556),
//	})
//	idx.Stab(45_331_258) // [[45331182, 45331334]]
//
// An Index is immutable once built and may be queried from any number of
// goroutines.
package stabby

import (
	"cmp"
	"fmt"
)

// Interval is the closed interval [First, Last].
type Interval struct {
	First uint64
	Last  uint64
}

// NewInterval returns [first, last]. It panics if first > last.
func NewInterval(first, last uint64) Interval {
	if first > last {
		panic(fmt.Sprintf("stabby: invalid interval [%d, %d]", first, last))
	}
	return Interval{First: first, Last: last}
}

// Contains returns true if x lies within the interval.
func (i Interval) Contains(x uint64) bool {
	return i.First <= x && x <= i.Last
}

// Overlaps returns true if the two intervals share at least one point.
func (i Interval) Overlaps(o Interval) bool {
	return i.First <= o.Last && o.First <= i.Last
}

// Compare orders intervals by First, then by Last.
func (i Interval) Compare(o Interval) int {
	if c := cmp.Compare(i.First, o.First); c != 0 {
		return c
	}
	return cmp.Compare(i.Last, o.Last)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d]", i.First, i.Last)
}
