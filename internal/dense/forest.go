// Package dense implements Schmidt's interval stabbing structure over a
// small, dense integer domain.
//
// Schmidt, Jens M. "Interval stabbing problems in small integer ranges."
// ISAAC 2009, LNCS 5878, pp. 163-172.
package dense

import (
	"cmp"
	"slices"

	"github.com/drtconway/stabby/internal/active"
)

// Interval is a closed interval [First, Last] over the dense domain.
type Interval struct {
	First int
	Last  int
}

// Compare orders intervals by First, then by Last.
func (a Interval) Compare(b Interval) int {
	if c := cmp.Compare(a.First, b.First); c != 0 {
		return c
	}
	return cmp.Compare(a.Last, b.Last)
}

// handle identifies a basic interval by its position in Forest.basics.
type handle = int32

// none is the forest root: the parent of top-level intervals and the
// value of every absent entry.
const none handle = -1

// Forest is the containment forest over the basic intervals together with
// the per-coordinate entry points. It is read-only after New returns.
type Forest struct {
	// basics holds one interval per distinct First, the one with the
	// greatest Last, sorted by First.
	basics []Interval
	// smaller[h] holds the other intervals sharing basics[h].First,
	// ascending by Last. nil when there are none.
	smaller [][]Interval

	parent []handle
	left   []handle
	last   []handle

	// start[q] is the innermost basic interval open at q.
	start []handle
	// start2[q] is the basic interval with the greatest First <= q.
	start2 []handle

	n int
}

// New builds a Forest over items for queries in [0, bound]. Duplicate
// items are kept. items need not be sorted; a bound below the largest
// Last is raised to it.
func New(bound int, items []Interval) *Forest {
	if !slices.IsSortedFunc(items, Interval.Compare) {
		items = slices.Clone(items)
		slices.SortFunc(items, Interval.Compare)
	}
	for _, it := range items {
		if it.Last > bound {
			bound = it.Last
		}
	}
	if bound < 0 {
		bound = 0
	}

	f := &Forest{n: len(items)}
	f.partition(items)
	f.sweep(bound)
	return f
}

// partition splits sorted items into basic intervals and smaller-sets.
func (f *Forest) partition(items []Interval) {
	for i := 0; i < len(items); {
		j := i
		for j+1 < len(items) && items[j+1].First == items[i].First {
			j++
		}
		f.basics = append(f.basics, items[j])
		if j > i {
			f.smaller = append(f.smaller, slices.Clone(items[i:j]))
		} else {
			f.smaller = append(f.smaller, nil)
		}
		i = j + 1
	}
}

// sweep walks the domain left to right, opening each basic interval at its
// First and closing it at its Last. A closing interval's parent is its
// predecessor in the open list; it is chained onto that parent's children
// through left and last.
func (f *Forest) sweep(bound int) {
	nb := len(f.basics)
	f.parent = filled(nb, none)
	f.left = filled(nb, none)
	f.last = filled(nb, none)
	f.start = filled(bound+1, none)
	f.start2 = filled(bound+1, none)

	// Close order: by Last, inner (greater First) before outer on ties.
	closing := make([]handle, nb)
	for i := range closing {
		closing[i] = handle(i)
	}
	slices.SortFunc(closing, func(a, b handle) int {
		if c := cmp.Compare(f.basics[a].Last, f.basics[b].Last); c != 0 {
			return c
		}
		return cmp.Compare(f.basics[b].First, f.basics[a].First)
	})

	open := active.New[handle](nb)
	saved := make([]active.Handle, nb)
	rootLast := none
	next, ci := 0, 0

	for q := 0; q <= bound; q++ {
		if a, ok := open.Back(); ok {
			f.start[q] = a
		}

		// Basic intervals have distinct starts, so at most one opens here.
		if next < nb && f.basics[next].First == q {
			h := handle(next)
			saved[h] = open.PushBack(h)
			f.start[q] = h
			next++
		}

		for ci < nb && f.basics[closing[ci]].Last == q {
			a := closing[ci]
			ci++

			p := none
			if ph, ok := open.Prev(saved[a]); ok {
				p = open.Get(ph)
			}
			f.parent[a] = p
			if p == none {
				f.left[a] = rootLast
				rootLast = a
			} else {
				f.left[a] = f.last[p]
				f.last[p] = a
			}
			open.Remove(saved[a])
		}

		if next > 0 {
			f.start2[q] = handle(next - 1)
		}
	}
}

func filled(n int, v handle) []handle {
	s := make([]handle, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Bound returns the largest queryable coordinate.
func (f *Forest) Bound() int {
	return len(f.start) - 1
}

// Len returns the number of stored intervals, duplicates included.
func (f *Forest) Len() int {
	return f.n
}

// Basics returns the number of basic intervals.
func (f *Forest) Basics() int {
	return len(f.basics)
}
