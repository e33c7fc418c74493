package canonical

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"dfhash/internal/table"
)

const defaultMinParallelRows = 8192

type options struct {
	workers         int
	minParallelRows int
}

// Option tunes Sort and Equal.
type Option func(*options)

// WithWorkers sets how many goroutines sort chunks concurrently. Values
// below one fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func resolveOptions(opts []Option) options {
	o := options{minParallelRows: defaultMinParallelRows}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Sort returns a new table holding t's rows in canonical order. The input
// table is not modified.
//
// Rows are split into one contiguous chunk per worker, each chunk is
// stable-sorted concurrently and the chunks are merged pairwise with the
// left chunk winning ties. That is exactly the result of a single stable
// sort, so the output never depends on the worker count.
func Sort(ctx context.Context, t *table.Table, opts ...Option) (*table.Table, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	o := resolveOptions(opts)

	sorted := t.WithRows(t.Rows)
	rows, err := sortRows(ctx, sorted.Rows, o)
	if err != nil {
		return nil, err
	}
	sorted.Rows = rows
	return sorted, nil
}

// IsSorted reports whether t's rows are already in canonical order.
func IsSorted(t *table.Table) bool {
	return slices.IsSortedFunc(t.Rows, CompareRows)
}

func sortRows(ctx context.Context, rows []table.Row, o options) ([]table.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workers := o.workers
	if workers > len(rows)/2 {
		workers = len(rows) / 2
	}
	if workers <= 1 || len(rows) < o.minParallelRows {
		slices.SortStableFunc(rows, CompareRows)
		return rows, nil
	}

	chunks := splitRows(rows, workers)
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slices.SortStableFunc(chunk, CompareRows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for len(chunks) > 1 {
		next := make([][]table.Row, (len(chunks)+1)/2)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < len(chunks); i += 2 {
			idx := i / 2
			if i+1 == len(chunks) {
				next[idx] = chunks[i]
				continue
			}
			left, right := chunks[i], chunks[i+1]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				next[idx] = mergeRows(left, right)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		chunks = next
	}
	return chunks[0], nil
}

func splitRows(rows []table.Row, parts int) [][]table.Row {
	chunks := make([][]table.Row, 0, parts)
	size := (len(rows) + parts - 1) / parts
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end:end])
	}
	return chunks
}

// mergeRows merges two sorted runs; on ties the left run goes first.
func mergeRows(left, right []table.Row) []table.Row {
	out := make([]table.Row, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if CompareRows(right[j], left[i]) < 0 {
			out = append(out, right[j])
			j++
			continue
		}
		out = append(out, left[i])
		i++
	}
	out = append(out, left[i:]...)
	return append(out, right[j:]...)
}
