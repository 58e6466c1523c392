package dense

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(first, last int) Interval {
	return Interval{First: first, Last: last}
}

// mixed is a set of overlapping and nested intervals over [0, 100].
var mixed = []Interval{
	iv(7, 62), iv(38, 57), iv(22, 65), iv(5, 88), iv(23, 43), iv(73, 75),
	iv(36, 89), iv(31, 55), iv(17, 91), iv(24, 80), iv(40, 47), iv(52, 67),
	iv(16, 45), iv(86, 90), iv(46, 56), iv(33, 84), iv(21, 56), iv(15, 93),
	iv(48, 51), iv(68, 96), iv(35, 64), iv(63, 78), iv(71, 99), iv(3, 4),
	iv(18, 85), iv(37, 83), iv(10, 25), iv(32, 66), iv(9, 49), iv(3, 13),
	iv(6, 94), iv(75, 98), iv(8, 69), iv(39, 74), iv(11, 41), iv(14, 59),
	iv(24, 75), iv(1, 2), iv(50, 53), iv(0, 42), iv(49, 76), iv(25, 55),
	iv(60, 69), iv(15, 18), iv(52, 79), iv(15, 74), iv(30, 82), iv(34, 81),
	iv(39, 97), iv(51, 81), iv(29, 87), iv(61, 92), iv(12, 70), iv(26, 54),
	iv(12, 52), iv(52, 54), iv(12, 72), iv(12, 58), iv(44, 88),
}

// exonLike mirrors the dense image of a gene with many transcripts: long
// shared spans, short exons, several intervals per start.
var exonLike = []Interval{
	iv(0, 10), iv(0, 58), iv(2, 10), iv(2, 44), iv(4, 10), iv(4, 58), iv(6, 10),
	iv(6, 58), iv(8, 10), iv(8, 36), iv(12, 14), iv(16, 18), iv(20, 22),
	iv(24, 26), iv(28, 30), iv(32, 34), iv(32, 36), iv(38, 40), iv(42, 44),
	iv(46, 50), iv(48, 50), iv(52, 54), iv(56, 58), iv(60, 64), iv(60, 134),
	iv(60, 136), iv(60, 142), iv(62, 64), iv(62, 132), iv(66, 68), iv(70, 72),
	iv(74, 76), iv(78, 80), iv(82, 84), iv(86, 88), iv(90, 92), iv(94, 96),
	iv(98, 100), iv(102, 104), iv(106, 108), iv(110, 112), iv(114, 116),
	iv(118, 120), iv(122, 124), iv(126, 128), iv(130, 132), iv(130, 134),
	iv(130, 136), iv(138, 140), iv(144, 146), iv(144, 258), iv(144, 260),
	iv(148, 150), iv(152, 154), iv(156, 158), iv(160, 162), iv(164, 166),
	iv(168, 170), iv(172, 174), iv(176, 178), iv(180, 182), iv(184, 186),
	iv(188, 190), iv(192, 194), iv(196, 198), iv(200, 202), iv(204, 206),
	iv(208, 210), iv(212, 214), iv(216, 218), iv(220, 222), iv(224, 226),
	iv(228, 230), iv(232, 234), iv(236, 238), iv(240, 244), iv(242, 244),
	iv(242, 256), iv(246, 248), iv(250, 252), iv(254, 256), iv(254, 258),
}

func bruteStab(items []Interval, q int) []Interval {
	var out []Interval
	for _, it := range items {
		if it.First <= q && q <= it.Last {
			out = append(out, it)
		}
	}
	return out
}

func bruteOverlap(items []Interval, qi Interval) []Interval {
	var out []Interval
	for _, it := range items {
		if it.First <= qi.Last && it.Last >= qi.First {
			out = append(out, it)
		}
	}
	return out
}

func TestPartition(t *testing.T) {
	f := New(10, []Interval{iv(1, 3), iv(2, 5), iv(2, 7)})

	assert.Equal(t, 2, f.Basics())
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []Interval{iv(1, 3), iv(2, 7)}, f.basics)
	assert.Nil(t, f.smaller[0])
	assert.Equal(t, []Interval{iv(2, 5)}, f.smaller[1])
}

func TestForest_Small(t *testing.T) {
	f := New(6, []Interval{iv(1, 2), iv(1, 4), iv(3, 5)})

	require.Len(t, f.smaller, 2)
	assert.Equal(t, []Interval{iv(1, 2)}, f.smaller[0])

	assert.True(t, f.Stabs(3))
	assert.False(t, f.Stabs(0))
	assert.False(t, f.Stabs(6))
	assert.Equal(t, []Interval{iv(1, 4), iv(3, 5)}, f.Stab(3))
	assert.Equal(t, []Interval{iv(1, 2), iv(1, 4)}, f.Stab(1))
	assert.Empty(t, f.Stab(0))
}

func TestForest_StabMatchesBruteForce(t *testing.T) {
	f := New(100, mixed)
	for q := 0; q <= 100; q++ {
		want := bruteStab(mixed, q)
		assert.Equal(t, len(want) > 0, f.Stabs(q), "Stabs(%d)", q)
		assert.ElementsMatch(t, want, f.Stab(q), "Stab(%d)", q)
	}
}

func TestForest_ExonLike(t *testing.T) {
	f := New(261, exonLike)
	for q := 0; q <= 261; q++ {
		assert.ElementsMatch(t, bruteStab(exonLike, q), f.Stab(q), "Stab(%d)", q)
	}
}

func TestForest_StabInterval(t *testing.T) {
	f := New(100, mixed)
	queries := []Interval{
		iv(39, 84), iv(13, 44), iv(2, 57), iv(50, 75), iv(2, 11),
		iv(0, 0), iv(100, 100), iv(0, 100), iv(95, 120),
	}
	for _, qi := range queries {
		assert.ElementsMatch(t, bruteOverlap(mixed, qi), f.StabInterval(qi), "StabInterval(%v)", qi)
	}
}

func TestForest_StabIntervalBetweenIntervals(t *testing.T) {
	src := []Interval{iv(2, 4), iv(6, 8), iv(10, 12), iv(14, 16), iv(18, 20), iv(22, 24)}
	f := New(25, src)

	assert.Equal(t, []Interval{iv(14, 16)}, f.StabInterval(iv(13, 17)))
	assert.Equal(t, []Interval{iv(2, 4), iv(6, 8)}, f.StabInterval(iv(3, 6)))
	assert.Empty(t, f.StabInterval(iv(25, 25)))
	assert.Empty(t, f.StabInterval(iv(9, 9)))
}

func TestForest_StabIntervalEnclosingOlderInterval(t *testing.T) {
	// The interval with the latest start before the query ends before it
	// begins, but an older, longer interval still spans the query.
	f := New(100, []Interval{iv(0, 100), iv(50, 60)})

	assert.Equal(t, []Interval{iv(0, 100)}, f.StabInterval(iv(70, 80)))
	assert.Equal(t, []Interval{iv(0, 100), iv(50, 60)}, f.StabInterval(iv(40, 55)))
}

func TestForest_StabIntervalReversedBounds(t *testing.T) {
	f := New(10, []Interval{iv(1, 5)})
	assert.Empty(t, f.StabInterval(iv(4, 2)))
	assert.Empty(t, f.StabInterval(iv(11, 20)))
}

func TestForest_SinglePointIntervals(t *testing.T) {
	src := []Interval{iv(0, 0), iv(2, 2), iv(2, 6), iv(4, 4), iv(6, 6), iv(1, 8)}
	f := New(8, src)

	for q := 0; q <= 8; q++ {
		want := bruteStab(src, q)
		assert.Equal(t, len(want) > 0, f.Stabs(q), "Stabs(%d)", q)
		assert.ElementsMatch(t, want, f.Stab(q), "Stab(%d)", q)
	}
	assert.Equal(t, []Interval{iv(0, 0)}, f.Stab(0))
}

func TestForest_Duplicates(t *testing.T) {
	src := []Interval{iv(2, 6), iv(2, 6), iv(2, 6), iv(3, 4), iv(3, 4)}
	f := New(8, src)

	assert.Equal(t, 5, f.Len())
	assert.Equal(t, 2, f.Basics())
	assert.ElementsMatch(t, src, f.Stab(3))
	assert.ElementsMatch(t, []Interval{iv(2, 6), iv(2, 6), iv(2, 6)}, f.Stab(5))
	assert.ElementsMatch(t, src, f.StabInterval(iv(0, 8)))
}

func TestForest_Empty(t *testing.T) {
	f := New(0, nil)
	assert.Equal(t, 0, f.Bound())
	assert.False(t, f.Stabs(0))
	assert.Empty(t, f.Stab(0))
	assert.Empty(t, f.StabInterval(iv(0, 0)))

	f = New(10, nil)
	for q := 0; q <= 10; q++ {
		assert.False(t, f.Stabs(q))
	}
}

func TestForest_OutOfRange(t *testing.T) {
	f := New(10, []Interval{iv(1, 10)})
	assert.False(t, f.Stabs(-1))
	assert.False(t, f.Stabs(11))
	assert.Empty(t, f.Stab(11))
	assert.Equal(t, []Interval{iv(1, 10)}, f.StabInterval(iv(-5, 3)))
	assert.Equal(t, []Interval{iv(1, 10)}, f.StabInterval(iv(10, 50)))
}

func TestForest_BoundRaisedToLargestLast(t *testing.T) {
	f := New(3, []Interval{iv(1, 9)})
	assert.Equal(t, 9, f.Bound())
	assert.True(t, f.Stabs(9))
}

func TestForest_OrderInvariance(t *testing.T) {
	shuffled := slices.Clone(mixed)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	a := New(100, mixed)
	b := New(100, shuffled)
	for q := 0; q <= 100; q++ {
		assert.Equal(t, a.Stab(q), b.Stab(q), "Stab(%d)", q)
		assert.Equal(t, a.StabInterval(iv(q, q+7)), b.StabInterval(iv(q, q+7)))
	}
}

func TestForest_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := range 50 {
		bound := 10 + rng.Intn(200)
		n := rng.Intn(60)
		src := make([]Interval, n)
		for i := range src {
			a := rng.Intn(bound + 1)
			b := a + rng.Intn(bound-a+1)
			src[i] = iv(a, b)
		}
		f := New(bound, src)

		for q := 0; q <= bound; q++ {
			want := bruteStab(src, q)
			require.Equal(t, len(want) > 0, f.Stabs(q), "round %d Stabs(%d)", round, q)
			require.ElementsMatch(t, want, f.Stab(q), "round %d Stab(%d)", round, q)
		}
		for range 40 {
			a := rng.Intn(bound + 1)
			qi := iv(a, a+rng.Intn(bound-a+1))
			require.ElementsMatch(t, bruteOverlap(src, qi), f.StabInterval(qi), "round %d StabInterval(%v)", round, qi)
		}
	}
}

func TestForest_ChainsDecreaseInLast(t *testing.T) {
	f := New(100, mixed)

	for h, s := range f.smaller {
		assert.True(t, slices.IsSortedFunc(s, Interval.Compare))
		for _, it := range s {
			assert.LessOrEqual(t, it.Last, f.basics[h].Last)
		}
	}

	for h := range f.basics {
		// Following left then last never increases Last.
		prev := f.basics[h].Last
		for t2 := f.left[h]; t2 != none; t2 = f.last[t2] {
			assert.LessOrEqual(t, f.basics[t2].Last, prev)
			prev = f.basics[t2].Last
		}
		if c := f.last[h]; c != none {
			assert.LessOrEqual(t, f.basics[c].Last, f.basics[h].Last)
		}
	}
}

func TestForest_ParentChainsTerminate(t *testing.T) {
	f := New(261, exonLike)
	for h := range f.basics {
		steps := 0
		for a := handle(h); a != none; a = f.parent[a] {
			steps++
			require.LessOrEqual(t, steps, len(f.basics), "parent chain from %d cycles", h)
		}
	}
}
