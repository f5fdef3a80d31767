// Package parallel runs independent jobs on a fixed set of goroutines.
//
// It is used to decode brush container files concurrently while the caller
// keeps the results in a deterministic order.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines draining a shared work queue.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			p.drain()
			return
		case work := <-p.queue:
			work()
		}
	}
}

// drain executes all work still queued.
func (p *WorkerPool) drain() {
	for {
		select {
		case work := <-p.queue:
			work()
		default:
			return
		}
	}
}

// ExecuteAll runs every job and waits for all of them to finish.
//
// Jobs not yet started when ctx is cancelled are skipped; ExecuteAll then
// returns ctx.Err() once the jobs already running have completed.
// If the pool is closed, the jobs run on the calling goroutine.
func (p *WorkerPool) ExecuteAll(ctx context.Context, work []func()) error {
	if len(work) == 0 {
		return nil
	}
	if !p.running.Load() {
		for _, fn := range work {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
		}
		return nil
	}

	var completion sync.WaitGroup
	completion.Add(len(work))

	for i, fn := range work {
		wrapped := func() {
			defer completion.Done()
			if ctx.Err() == nil {
				fn()
			}
		}
		select {
		case p.queue <- wrapped:
		case <-ctx.Done():
			completion.Add(-(len(work) - i))
			completion.Wait()
			return ctx.Err()
		case <-p.done:
			completion.Add(-(len(work) - i))
			completion.Wait()
			return nil
		}
	}

	completion.Wait()
	return ctx.Err()
}

// Close stops the workers after the queued jobs complete.
// Close is safe to call multiple times, but not concurrently with ExecuteAll.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
