package sweep

import (
	"context"
	"sync"
)

// ParallelFor evaluates fn for every index in [0, n) using up to workers
// goroutines, each owning a contiguous chunk. The returned slice holds fn's
// error for each index, by input position. Once ctx is done no further
// samples start and the remaining indices report ctx.Err().
func ParallelFor(ctx context.Context, n, workers int, fn func(i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	run := func(start, end int) {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			errs[i] = fn(i)
		}
	}

	if workers == 1 {
		run(0, n)
		return errs
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			run(s, e)
		}(start, end)
	}
	wg.Wait()

	return errs
}
