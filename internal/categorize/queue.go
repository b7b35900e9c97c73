package categorize

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one unit of categorization work. Errors are swallowed and logged at
// the queue boundary: a single bad categorization must never stop the
// admission loop.
type Job func(ctx context.Context) error

type queueItem struct {
	key string
	job Job
}

// RequestQueue throttles calls into a rate-sensitive local model backend.
// Jobs run in FIFO submission order, at most maxConcurrent at a time, with a
// fixed delay before a finished job's slot is released. Submission is
// fire-and-forget and idempotent per key.
type RequestQueue struct {
	mu      sync.Mutex
	pending []queueItem
	keys    map[string]struct{}
	running int

	maxConcurrent int
	delay         time.Duration
	logger        *slog.Logger
	wg            sync.WaitGroup
}

// NewRequestQueue creates a queue with the given concurrency cap and
// inter-job delay.
func NewRequestQueue(maxConcurrent int, delay time.Duration, logger *slog.Logger) *RequestQueue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &RequestQueue{
		keys:          make(map[string]struct{}),
		maxConcurrent: maxConcurrent,
		delay:         delay,
		logger:        logger,
	}
}

// Add enqueues a job under the given key. A key already pending is silently
// ignored; this is idempotent submission, not a replace.
func (q *RequestQueue) Add(key string, job Job) {
	q.mu.Lock()
	if _, exists := q.keys[key]; exists {
		q.mu.Unlock()
		return
	}
	q.keys[key] = struct{}{}
	q.pending = append(q.pending, queueItem{key: key, job: job})
	q.wg.Add(1)
	q.mu.Unlock()

	q.dispatch()
}

// dispatch admits pending jobs while slots are free.
func (q *RequestQueue) dispatch() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.running < q.maxConcurrent && len(q.pending) > 0 {
		item := q.pending[0]
		q.pending = q.pending[1:]
		delete(q.keys, item.key)
		q.running++

		go q.run(item)
	}
}

func (q *RequestQueue) run(item queueItem) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("categorization job panicked", "key", item.key, "panic", r)
		}

		if q.delay > 0 {
			time.Sleep(q.delay)
		}

		q.mu.Lock()
		q.running--
		q.mu.Unlock()

		q.wg.Done()
		q.dispatch()
	}()

	if err := item.job(context.Background()); err != nil {
		q.logger.Error("categorization job failed", "key", item.key, "error", err)
	}
}

// Clear drops all pending (not yet started) jobs. In-flight jobs run to
// completion.
func (q *RequestQueue) Clear() {
	q.mu.Lock()
	dropped := len(q.pending)
	q.pending = nil
	q.keys = make(map[string]struct{})
	q.mu.Unlock()

	for i := 0; i < dropped; i++ {
		q.wg.Done()
	}
}

// PendingLen returns the number of jobs waiting for a slot.
func (q *RequestQueue) PendingLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Running returns the number of jobs currently executing.
func (q *RequestQueue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Wait blocks until every accepted job has finished. Used by tests and by
// shutdown; normal submission never waits.
func (q *RequestQueue) Wait() {
	q.wg.Wait()
}
