package filter

import (
	"context"
	"sync"
	"time"
)

// BatchResult represents the result of a batch classification
type BatchResult struct {
	// Decisions in request order
	Decisions []Decision
	// Total classification time
	TotalTime time.Duration
	// Count of blocked requests
	Blocked int
	// Count of requests skipped because the context ended
	Skipped int
}

// ProgressCallback is called to report progress during batch classification.
// It may be called from several goroutines at once.
type ProgressCallback func(completed int, total int)

// ParallelClassifier fans a batch of requests out over a bounded number of
// goroutines. Each request is still decided synchronously, with
// Registry.Decide.
type ParallelClassifier struct {
	registry    *Registry
	maxParallel int
}

// NewParallelClassifier creates a new parallel classifier
func NewParallelClassifier(registry *Registry, maxParallel int) *ParallelClassifier {
	if maxParallel <= 0 {
		maxParallel = 4 // Default parallelism
	}
	return &ParallelClassifier{
		registry:    registry,
		maxParallel: maxParallel,
	}
}

// Classify runs every request through the registry. Requests not started
// before ctx ends are reported as Allow and counted in Skipped; the context
// error is returned alongside the partial result.
func (pc *ParallelClassifier) Classify(ctx context.Context, requests []Request, progress ProgressCallback) (*BatchResult, error) {
	result := &BatchResult{
		Decisions: make([]Decision, len(requests)),
	}
	if len(requests) == 0 {
		return result, nil
	}

	startTime := time.Now()

	// Create semaphore for limiting parallelism
	semaphore := make(chan struct{}, pc.maxParallel)

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i := range requests {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			select {
			case <-ctx.Done():
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return
			default:
			}

			req := requests[idx]
			decision := pc.registry.Decide(&req)

			mu.Lock()
			result.Decisions[idx] = decision
			if decision == Block {
				result.Blocked++
			}
			completed++
			currentCompleted := completed
			mu.Unlock()

			if progress != nil {
				progress(currentCompleted, len(requests))
			}
		}(i)
	}

	wg.Wait()
	result.TotalTime = time.Since(startTime)

	return result, ctx.Err()
}
