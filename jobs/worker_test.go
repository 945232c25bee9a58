package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolExecutesJobs(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Stop()

	var ran int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		err := pool.Submit(Job{
			ID: "job",
			Execute: func(ctx context.Context) error {
				if atomic.AddInt32(&ran, 1) == 5 {
					close(done)
				}
				return nil
			},
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("only %d of 5 jobs ran", atomic.LoadInt32(&ran))
	}
}

func TestWorkerPoolBackpressure(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Stop()

	block := make(chan struct{})
	defer close(block)

	blocking := Job{
		ID: "blocker",
		Execute: func(ctx context.Context) error {
			<-block
			return nil
		},
	}

	// Fill the single worker plus the queue buffer, then expect a rejection.
	rejected := false
	for i := 0; i < 20; i++ {
		if err := pool.Submit(blocking); err != nil {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Error("full queue accepted every submission")
	}
}

func TestWorkerPoolSubmitDuringStopDoesNotPanic(t *testing.T) {
	noop := Job{ID: "noop", Execute: func(ctx context.Context) error { return nil }}

	// Hammer Submit from several goroutines while Stop runs so the two
	// interleave; any accepted or rejected outcome is fine, a panic is not.
	for i := 0; i < 50; i++ {
		pool := NewWorkerPool(2)

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					pool.Submit(noop)
				}
			}()
		}
		pool.Stop()
		wg.Wait()
	}
}

func TestWorkerPoolStopRejectsSubmissions(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Stop()

	err := pool.Submit(Job{ID: "late", Execute: func(ctx context.Context) error { return nil }})
	if err == nil {
		t.Error("stopped pool accepted a job")
	}
}
