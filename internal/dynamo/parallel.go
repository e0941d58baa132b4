package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelFor executes fn over [0, n) in contiguous chunks of at least minChunk
// indices, on at most workers goroutines. Chunks never overlap, so fn may write
// per-index slots without locking. The first error returned by a chunk is
// reported after all chunks finish.
func ParallelFor(ctx context.Context, n, minChunk, workers int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if workers < 1 {
		workers = 1
	}
	if n <= minChunk || workers == 1 {
		return fn(0, n)
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	chunkSize := (n + workers - 1) / workers

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			return fn(s, e)
		})
	}
	return g.Wait()
}
