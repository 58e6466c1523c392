package dense

import "slices"

// Stabs reports whether any interval contains q.
func (f *Forest) Stabs(q int) bool {
	if q < 0 || q >= len(f.start) {
		return false
	}
	return f.start[q] != none
}

// Stab returns every interval containing q, ordered from the outermost
// nesting level inwards.
func (f *Forest) Stab(q int) []Interval {
	if q < 0 || q >= len(f.start) {
		return nil
	}
	return f.walk(f.start[q], q)
}

// StabInterval returns every interval overlapping qi: those containing
// qi.First followed by those starting in (qi.First, qi.Last].
func (f *Forest) StabInterval(qi Interval) []Interval {
	lq, rq := qi.First, qi.Last
	if lq > rq || rq < 0 || lq >= len(f.start) {
		return nil
	}
	if lq < 0 {
		lq = 0
	}
	if rq >= len(f.start) {
		rq = len(f.start) - 1
	}

	res := f.walk(f.start[lq], lq)

	// start2 holds basic indices, which are sorted by First.
	for h := f.start2[lq] + 1; h <= f.start2[rq]; h++ {
		res = append(res, f.smaller[h]...)
		res = append(res, f.basics[h])
	}
	return res
}

// walk collects the ancestors of e and, below each ancestor, the chain of
// earlier-closed siblings and their last children whose Last is at least
// threshold. Siblings are chained in decreasing order of Last, so the first
// one below threshold ends the chain.
func (f *Forest) walk(e handle, threshold int) []Interval {
	if e == none {
		return nil
	}

	var stack []handle
	for a := e; a != none; a = f.parent[a] {
		stack = append(stack, a)
	}
	slices.Reverse(stack)

	var res []Interval
	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		res = append(res, f.basics[a])
		s := f.smaller[a]
		for i := len(s) - 1; i >= 0 && s[i].Last >= threshold; i-- {
			res = append(res, s[i])
		}

		for t := f.left[a]; t != none && f.basics[t].Last >= threshold; t = f.last[t] {
			stack = append(stack, t)
		}
	}

	slices.Reverse(res)
	return res
}
