package parallel

import "runtime"

// Band is a half-open range [Start, End) of item indices owned by one task.
type Band struct {
	Start, End int
}

// Len returns the number of items in the band.
func (b Band) Len() int { return b.End - b.Start }

// Bands splits n items into at most parts contiguous bands of nearly
// equal size. Bands are ordered and cover [0, n) exactly once.
func Bands(n, parts int) []Band {
	if n <= 0 {
		return nil
	}
	parts = min(max(parts, 1), n)

	bands := make([]Band, 0, parts)
	size, extra := n/parts, n%parts
	start := 0
	for i := range parts {
		end := start + size
		if i < extra {
			end++
		}
		bands = append(bands, Band{Start: start, End: end})
		start = end
	}
	return bands
}

// bandsPerWorker oversplits the work so that stealing can even out bands
// of unequal cost.
const bandsPerWorker = 4

// ForEachBand partitions n items over workers goroutines and calls fn once
// per band. It returns after every call has finished. With one worker, or
// fewer items than workers, fn runs on the calling goroutine.
//
// fn must only touch state owned by its band.
func ForEachBand(workers, n int, fn func(Band)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || n < workers {
		fn(Band{Start: 0, End: n})
		return
	}

	pool := NewWorkerPool(workers)
	defer pool.Close()

	bands := Bands(n, pool.Workers()*bandsPerWorker)
	tasks := make([]func(), len(bands))
	for i, b := range bands {
		tasks[i] = func() { fn(b) }
	}
	pool.ExecuteAll(tasks)
}
