// Package batch provides chunked parallel iteration over independent
// batch rows. Rows share no mutable state, so the only synchronization
// needed is the final WaitGroup join.
package batch

import (
	"runtime"
	"sync"
)

// ParallelFor executes fn over contiguous chunks covering [0, n). Work is
// run serially when n is below minChunk or only one CPU is available.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.NumCPU()
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
