package stabby

import (
	"slices"

	"go.uber.org/zap"

	"github.com/drtconway/stabby/internal/coord"
	"github.com/drtconway/stabby/internal/dense"
)

// RankSelect is the rank/select capability used to compress coordinates.
// Rank(x) counts built coordinates strictly below x; Select(i) returns the
// i-th smallest.
type RankSelect = coord.RankSelect

// RankSelectBuilder builds a RankSelect from sorted, distinct coordinates.
type RankSelectBuilder = coord.Builder

// Option configures New.
type Option func(*options)

type options struct {
	logger *zap.Logger
	build  coord.Builder
}

// WithLogger sets the logger used to report construction statistics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRankSelect replaces the default roaring-bitmap rank/select structure.
func WithRankSelect(b RankSelectBuilder) Option {
	return func(o *options) {
		o.build = b
	}
}

// Index answers stabbing queries over a fixed collection of intervals.
type Index struct {
	domain *coord.Compressor
	forest *dense.Forest
}

// New builds an index over items. items may be in any order; identical
// intervals are kept and reported once per occurrence.
func New(items []Interval, opts ...Option) *Index {
	o := options{logger: zap.NewNop(), build: coord.NewRoaring}
	for _, opt := range opts {
		opt(&o)
	}

	points := make([]uint64, 0, 2*len(items))
	for _, it := range items {
		points = append(points, it.First, it.Last)
	}
	domain := coord.New(points, o.build)

	ys := make([]dense.Interval, len(items))
	bound := 0
	for i, it := range items {
		y := dense.Interval{First: domain.ToDense(it.First), Last: domain.ToDense(it.Last)}
		if y.Last > bound {
			bound = y.Last
		}
		ys[i] = y
	}
	slices.SortFunc(ys, dense.Interval.Compare)

	forest := dense.New(bound, ys)
	o.logger.Debug("built interval index",
		zap.Int("intervals", forest.Len()),
		zap.Int("basic_intervals", forest.Basics()),
		zap.Int("coordinates", domain.Len()),
		zap.Int("dense_bound", forest.Bound()))

	return &Index{domain: domain, forest: forest}
}

// Len returns the number of intervals in the index.
func (idx *Index) Len() int {
	return idx.forest.Len()
}

// Stabs reports whether any interval contains q.
func (idx *Index) Stabs(q uint64) bool {
	return idx.forest.Stabs(idx.domain.ToDense(q))
}

// Stab returns the intervals containing q.
func (idx *Index) Stab(q uint64) []Interval {
	return idx.toSparse(idx.forest.Stab(idx.domain.ToDense(q)))
}

// StabInterval returns the intervals sharing at least one point with qi.
func (idx *Index) StabInterval(qi Interval) []Interval {
	if qi.First > qi.Last {
		return nil
	}
	dq := dense.Interval{First: idx.domain.ToDense(qi.First), Last: idx.domain.ToDense(qi.Last)}
	return idx.toSparse(idx.forest.StabInterval(dq))
}

func (idx *Index) toSparse(ys []dense.Interval) []Interval {
	if len(ys) == 0 {
		return nil
	}
	xs := make([]Interval, len(ys))
	for i, y := range ys {
		xs[i] = Interval{First: idx.domain.ToSparse(y.First), Last: idx.domain.ToSparse(y.Last)}
	}
	return xs
}
