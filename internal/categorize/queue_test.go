package categorize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueRunsJobsFIFO(t *testing.T) {
	queue := NewRequestQueue(1, 0, testLogger())

	var mu sync.Mutex
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		queue.Add(fmt.Sprintf("job-%d", i), func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	queue.Wait()

	if len(order) != 5 {
		t.Fatalf("expected 5 jobs to run, got %d", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestQueueDuplicateKeyIsNoOp(t *testing.T) {
	queue := NewRequestQueue(1, 0, testLogger())

	block := make(chan struct{})
	queue.Add("blocker", func(ctx context.Context) error {
		<-block
		return nil
	})

	var runs int32
	job := func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}

	queue.Add("evt-1", job)
	before := queue.PendingLen()
	queue.Add("evt-1", job)
	queue.Add("evt-1", job)

	if got := queue.PendingLen(); got != before {
		t.Fatalf("duplicate Add should not grow the queue: had %d, got %d", before, got)
	}

	close(block)
	queue.Wait()

	if atomic.LoadInt32(&runs) != 1 {
		t.Fatalf("expected the deduplicated job to run once, ran %d times", runs)
	}
}

func TestQueueNeverExceedsMaxConcurrent(t *testing.T) {
	const maxConcurrent = 2
	queue := NewRequestQueue(maxConcurrent, 0, testLogger())

	var current, peak int32
	release := make(chan struct{})

	for i := 0; i < 10; i++ {
		queue.Add(fmt.Sprintf("job-%d", i), func(ctx context.Context) error {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			<-release
			atomic.AddInt32(&current, -1)
			return nil
		})
	}

	// Let the first wave start.
	time.Sleep(50 * time.Millisecond)
	if got := queue.Running(); got > maxConcurrent {
		t.Fatalf("running count %d exceeds cap %d", got, maxConcurrent)
	}

	close(release)
	queue.Wait()

	if got := atomic.LoadInt32(&peak); got > maxConcurrent {
		t.Fatalf("peak concurrency %d exceeds cap %d", got, maxConcurrent)
	}
}

func TestQueueSurvivesFailingAndPanickingJobs(t *testing.T) {
	queue := NewRequestQueue(1, 0, testLogger())

	var ran int32
	queue.Add("fails", func(ctx context.Context) error {
		return fmt.Errorf("backend exploded")
	})
	queue.Add("panics", func(ctx context.Context) error {
		panic("boom")
	})
	queue.Add("runs", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	queue.Wait()

	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("job after failures never ran; queue is stuck")
	}
}

func TestQueueClearDropsPendingOnly(t *testing.T) {
	queue := NewRequestQueue(1, 0, testLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	var inFlightDone, pendingRan int32

	queue.Add("in-flight", func(ctx context.Context) error {
		close(started)
		<-release
		atomic.AddInt32(&inFlightDone, 1)
		return nil
	})
	<-started

	for i := 0; i < 3; i++ {
		queue.Add(fmt.Sprintf("pending-%d", i), func(ctx context.Context) error {
			atomic.AddInt32(&pendingRan, 1)
			return nil
		})
	}

	queue.Clear()
	if got := queue.PendingLen(); got != 0 {
		t.Fatalf("expected empty pending queue after Clear, got %d", got)
	}

	close(release)
	queue.Wait()

	if atomic.LoadInt32(&inFlightDone) != 1 {
		t.Error("in-flight job should run to completion after Clear")
	}
	if atomic.LoadInt32(&pendingRan) != 0 {
		t.Errorf("cleared pending jobs should never run, %d did", pendingRan)
	}
}

func TestQueueDelayBetweenJobs(t *testing.T) {
	const delay = 50 * time.Millisecond
	queue := NewRequestQueue(1, delay, testLogger())

	var mu sync.Mutex
	var stamps []time.Time

	for i := 0; i < 2; i++ {
		queue.Add(fmt.Sprintf("job-%d", i), func(ctx context.Context) error {
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
			return nil
		})
	}

	queue.Wait()

	if len(stamps) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(stamps))
	}
	if gap := stamps[1].Sub(stamps[0]); gap < delay {
		t.Errorf("expected at least %v between jobs, got %v", delay, gap)
	}
}
