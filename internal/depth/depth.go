// Package depth computes stabbing-depth histograms: for every position in a
// range, how many indexed intervals cover it.
package depth

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/drtconway/stabby"
)

// Histogram maps a depth to the number of positions with that depth.
// Index i holds the count for depth i.
type Histogram []uint64

// Options configures Compute.
type Options struct {
	// Workers is the number of goroutines; 0 means runtime.NumCPU().
	Workers int
	// ChunkSize is the number of positions handed to a worker at a time.
	ChunkSize uint64
}

const defaultChunkSize = 1 << 16

// Counter reports the number of intervals covering q.
type Counter func(q uint64) int

// IndexCounter counts with idx.Stab.
func IndexCounter(idx *stabby.Index) Counter {
	return func(q uint64) int {
		return len(idx.Stab(q))
	}
}

// Compute scans [from, to] and histograms count(q) over every position.
// Chunks are processed concurrently; count must be safe for concurrent use.
func Compute(ctx context.Context, count Counter, from, to uint64, opts Options) (Histogram, error) {
	if from > to {
		return Histogram{}, nil
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := opts.ChunkSize
	if chunk == 0 {
		chunk = defaultChunkSize
	}

	type span struct{ lo, hi uint64 }
	spans := make(chan span, 2*workers)
	partial := make([]Histogram, workers)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(spans)
		for lo := from; ; lo += chunk {
			hi := to
			if to-lo >= chunk {
				hi = lo + chunk - 1
			}
			select {
			case spans <- span{lo, hi}:
			case <-ctx.Done():
				return ctx.Err()
			}
			if hi == to {
				return nil
			}
		}
	})

	for w := range workers {
		g.Go(func() error {
			var h Histogram
			for s := range spans {
				if err := ctx.Err(); err != nil {
					return err
				}
				for q := s.lo; ; q++ {
					h = h.add(count(q))
					if q == s.hi {
						break
					}
				}
			}
			partial[w] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total Histogram
	for _, h := range partial {
		total = total.merge(h)
	}
	return total, nil
}

func (h Histogram) add(d int) Histogram {
	for len(h) <= d {
		h = append(h, 0)
	}
	h[d]++
	return h
}

func (h Histogram) merge(o Histogram) Histogram {
	for len(h) < len(o) {
		h = append(h, 0)
	}
	for i, n := range o {
		h[i] += n
	}
	return h
}

// Positions returns the total number of positions counted.
func (h Histogram) Positions() uint64 {
	var n uint64
	for _, c := range h {
		n += c
	}
	return n
}

// Write prints one "depth<TAB>positions" line per depth.
func (h Histogram) Write(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "depth\tpositions"); err != nil {
		return err
	}
	for d, n := range h {
		if _, err := fmt.Fprintf(w, "%d\t%d\n", d, n); err != nil {
			return err
		}
	}
	return nil
}
