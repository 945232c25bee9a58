// Package jobs runs async report computations on a fixed worker pool.
package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Job is one unit of work. Execute receives the pool's base context so
// in-flight jobs stop when the pool shuts down.
type Job struct {
	ID      string
	Execute func(ctx context.Context) error
}

// WorkerPool manages a fixed set of workers draining a buffered queue.
type WorkerPool struct {
	workerCount int
	jobQueue    chan Job
	wg          sync.WaitGroup
	stopOnce    sync.Once
	done        chan struct{}
	cancel      context.CancelFunc
	baseCtx     context.Context
}

// NewWorkerPool starts workerCount workers with a queue buffered at twice
// the worker count.
func NewWorkerPool(workerCount int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan Job, workerCount*2),
		done:        make(chan struct{}),
		cancel:      cancel,
		baseCtx:     ctx,
	}

	for i := 0; i < workerCount; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	log.Printf("Started worker pool with %d workers", workerCount)
	return pool
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			if err := job.Execute(p.baseCtx); err != nil {
				log.Printf("Worker %d job %s failed: %v", id, job.ID, err)
			} else {
				log.Printf("Worker %d job %s completed", id, job.ID)
			}
		case <-p.done:
			return
		}
	}
}

// Submit queues a job. It fails once the pool is shutting down or when the
// queue is full, so callers can surface backpressure instead of blocking.
func (p *WorkerPool) Submit(job Job) error {
	select {
	case <-p.done:
		return fmt.Errorf("worker pool is shutting down")
	default:
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.done:
		return fmt.Errorf("worker pool is shutting down")
	default:
		return fmt.Errorf("job queue is full")
	}
}

// Stop cancels in-flight jobs and waits for the workers to exit. The queue
// channel is never closed: Submit may race Stop, and a late send must fail
// through the done check rather than panic on a closed channel.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.cancel()
		p.wg.Wait()
		log.Println("Worker pool stopped")
	})
}

// QueueSize reports the number of queued jobs.
func (p *WorkerPool) QueueSize() int {
	return len(p.jobQueue)
}
