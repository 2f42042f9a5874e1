package dynamo

import "sync"

// Chunk is a half-open index range [Start, End).
type Chunk struct {
	Start, End int
}

// Partition splits [0, n) into at most workers contiguous chunks, each holding
// at least minChunk items unless n itself is smaller.
func Partition(n, minChunk, workers int) []Chunk {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if workers > n/minChunk {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers
	chunks := make([]Chunk, 0, workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
	}
	return chunks
}

// ParallelFor runs fn once per chunk, concurrently when there is more than one chunk.
func ParallelFor(chunks []Chunk, fn func(worker int, c Chunk)) {
	if len(chunks) == 1 {
		fn(0, chunks[0])
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for w, c := range chunks {
		go func(worker int, c Chunk) {
			defer wg.Done()
			fn(worker, c)
		}(w, c)
	}
	wg.Wait()
}
