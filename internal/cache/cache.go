// Package cache holds genomic features grouped by chromosome and answers
// position and region lookups through a stabbing index per chromosome.
package cache

import (
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/drtconway/stabby"
	"github.com/drtconway/stabby/internal/gtf"
)

type chromIndex struct {
	index    *stabby.Index
	features map[stabby.Interval][]*gtf.Feature
	maxEnd   uint64
}

// Cache provides feature lookups by genomic position.
type Cache struct {
	// features stores features indexed by normalized chromosome name
	features map[string][]*gtf.Feature
	indexes  map[string]*chromIndex
	logger   *zap.Logger
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		features: make(map[string][]*gtf.Feature),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for index construction messages.
func (c *Cache) SetLogger(l *zap.Logger) {
	c.logger = l
}

// AddFeature adds a feature to the cache. Features added after Build are
// not visible to lookups until Build is called again.
func (c *Cache) AddFeature(f *gtf.Feature) {
	chrom := gtf.NormalizeChrom(f.Chrom)
	c.features[chrom] = append(c.features[chrom], f)
}

// AddFeatures adds every feature in fs.
func (c *Cache) AddFeatures(fs []gtf.Feature) {
	for i := range fs {
		c.AddFeature(&fs[i])
	}
}

// Build creates one index per chromosome over the distinct feature
// intervals. Features sharing an interval are reported together.
func (c *Cache) Build() {
	c.indexes = make(map[string]*chromIndex, len(c.features))
	for chrom, features := range c.features {
		ci := &chromIndex{features: make(map[stabby.Interval][]*gtf.Feature)}
		for _, f := range features {
			ivl := stabby.NewInterval(f.Start, f.End)
			ci.features[ivl] = append(ci.features[ivl], f)
			ci.maxEnd = max(ci.maxEnd, f.End)
		}

		intervals := make([]stabby.Interval, 0, len(ci.features))
		for ivl := range ci.features {
			intervals = append(intervals, ivl)
		}
		slices.SortFunc(intervals, stabby.Interval.Compare)

		ci.index = stabby.New(intervals, stabby.WithLogger(c.logger.With(zap.String("chrom", chrom))))
		c.indexes[chrom] = ci
	}
}

// Index returns the stabbing index for chrom, or nil if the chromosome is
// unknown or Build has not been called.
func (c *Cache) Index(chrom string) *stabby.Index {
	ci, ok := c.indexes[gtf.NormalizeChrom(chrom)]
	if !ok {
		return nil
	}
	return ci.index
}

// MaxEnd returns the largest feature end on chrom, or 0 if unknown.
func (c *Cache) MaxEnd(chrom string) uint64 {
	ci, ok := c.indexes[gtf.NormalizeChrom(chrom)]
	if !ok {
		return 0
	}
	return ci.maxEnd
}

// FindFeatures returns all features whose [Start, End] range contains pos.
func (c *Cache) FindFeatures(chrom string, pos uint64) []*gtf.Feature {
	ci, ok := c.indexes[gtf.NormalizeChrom(chrom)]
	if !ok {
		return nil
	}
	return ci.collect(ci.index.Stab(pos))
}

// FindOverlapping returns all features overlapping [start, end].
func (c *Cache) FindOverlapping(chrom string, start, end uint64) []*gtf.Feature {
	ci, ok := c.indexes[gtf.NormalizeChrom(chrom)]
	if !ok || start > end {
		return nil
	}
	return ci.collect(ci.index.StabInterval(stabby.NewInterval(start, end)))
}

func (ci *chromIndex) collect(ivls []stabby.Interval) []*gtf.Feature {
	var result []*gtf.Feature
	for _, ivl := range ivls {
		result = append(result, ci.features[ivl]...)
	}
	return result
}

// FeatureCount returns the total number of features in the cache.
func (c *Cache) FeatureCount() int {
	count := 0
	for _, features := range c.features {
		count += len(features)
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.features))
	for chrom := range c.features {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FeaturesByChrom returns all features for a chromosome.
func (c *Cache) FeaturesByChrom(chrom string) []*gtf.Feature {
	return c.features[gtf.NormalizeChrom(chrom)]
}
