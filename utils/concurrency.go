package utils

import (
	"sync"
)

// WorkerPool runs submitted jobs on at most maxWorkers goroutines.
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool with the given concurrency.
// Values below 1 are treated as 1.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Submit enqueues a job for execution in the pool. It blocks while all
// workers are busy.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// StringSet is a thread-safe set of strings.
type StringSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewStringSet creates an empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add returns true if s was newly added, false if already present.
func (ss *StringSet) Add(s string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, exists := ss.seen[s]; exists {
		return false
	}
	ss.seen[s] = struct{}{}
	return true
}

// Contains reports whether s has been added.
func (ss *StringSet) Contains(s string) bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	_, exists := ss.seen[s]
	return exists
}

// Size returns the number of unique strings tracked.
func (ss *StringSet) Size() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.seen)
}
