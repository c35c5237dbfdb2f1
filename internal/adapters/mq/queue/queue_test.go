package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/gaitprep/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, model.SubjectJob{Index: 0, Subject: "subject-a"}); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	job := <-q.Dequeue(ctx)
	if job.Subject != "subject-a" {
		t.Errorf("expected subject-a, got %v", job.Subject)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := q.EnqueueWait(ctx, model.SubjectJob{Index: i}); err != nil {
			t.Errorf("expected enqueue %d to succeed, got %v", i, err)
		}
	}

	// A blocking enqueue on a full queue gives up when its context ends
	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := q.EnqueueWait(waitCtx, model.SubjectJob{Index: 2}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestInMemoryQueue_EnqueueWait(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()
	out := q.Dequeue(ctx)

	const jobs = 20
	go func() {
		for i := 0; i < jobs; i++ {
			if err := q.EnqueueWait(ctx, model.SubjectJob{Index: i, Subject: fmt.Sprintf("s%02d", i)}); err != nil {
				t.Errorf("enqueue %d: %v", i, err)
			}
		}
		_ = q.Close()
	}()

	got := 0
	for job := range out {
		if job.Index != got {
			t.Errorf("expected job %d, got %d", got, job.Index)
		}
		got++
	}
	if got != jobs {
		t.Errorf("expected %d jobs, got %d", jobs, got)
	}
}

func TestInMemoryQueue_ConcurrentConsumers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := q.EnqueueWait(ctx, model.SubjectJob{Index: i}); err != nil {
			t.Fatalf("enqueue %d failed: %v", i, err)
		}
	}
	_ = q.Close()

	var mu sync.Mutex
	seen := make(map[int]bool)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range q.Dequeue(ctx) {
				mu.Lock()
				seen[job.Index] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 100 {
		t.Errorf("expected every job once, saw %d distinct", len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, model.SubjectJob{Index: 0}); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if err := q.EnqueueWait(ctx, model.SubjectJob{Index: 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Jobs queued before Close are still delivered
	count := 0
	for range q.Dequeue(ctx) {
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 drained job, got %d", count)
	}
}
