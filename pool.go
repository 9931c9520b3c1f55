package fqsim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Pool is the parallel-loop primitive behind every pass over a state vector.
A fixed set of long-lived workers register their job channel with the
dispatcher, which hands each queued chunk to the next free worker.
ParallelFor blocks until every chunk of its range has run, so consecutive
passes never overlap.
*/
type Pool struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	metrics    *Metrics
	workerList []*Worker
	config     *Config

	// Passes hold closeMu for reading, Close takes it for writing so it
	// waits for in-flight passes before tearing the workers down.
	closeMu sync.RWMutex
	closed  bool
	passes  uint64
	passMu  sync.Mutex
}

// NewPool starts workers goroutines. A non-positive count uses config.Workers.
func NewPool(ctx context.Context, workers int, config *Config) *Pool {
	if config == nil {
		config = NewConfig()
	}
	if workers <= 0 {
		workers = config.Workers
	}
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:        ctx,
		cancel:     cancel,
		workers:    make(chan chan Job, workers),
		jobs:       make(chan Job, workers*4),
		metrics:    NewMetrics(),
		workerList: make([]*Worker, 0, workers),
		config:     config,
	}

	for i := 0; i < workers; i++ {
		p.startWorker(i)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.manage()
	}()

	errnie.Debug("pool started with %d workers", workers)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workerList)
}

// Metrics returns the live metrics of the pool.
func (p *Pool) Metrics() *Metrics {
	return p.metrics
}

func (p *Pool) manage() {
	for {
		select {
		case <-p.ctx.Done():
			p.drain()
			return
		case job := <-p.jobs:
			select {
			case workerChan := <-p.workers:
				select {
				case workerChan <- job:
				case <-p.ctx.Done():
					job.pass.finish(ErrPoolClosed)
					p.drain()
					return
				}
			case <-p.ctx.Done():
				job.pass.finish(ErrPoolClosed)
				p.drain()
				return
			}
		}
	}
}

// drain fails every chunk still queued once the pool is shutting down.
func (p *Pool) drain() {
	for {
		select {
		case job := <-p.jobs:
			job.pass.finish(ErrPoolClosed)
		default:
			return
		}
	}
}

/*
await blocks until every chunk of batch has finished. After shutdown no
worker will pick up queued chunks, so the caller fails them itself while
chunks already running on a worker complete normally.
*/
func (p *Pool) await(batch *pass) {
	select {
	case <-batch.done:
		return
	case <-p.ctx.Done():
	}

	for {
		select {
		case <-batch.done:
			return
		case job := <-p.jobs:
			job.pass.finish(ErrPoolClosed)
		}
	}
}

func (p *Pool) startWorker(id int) {
	worker := &Worker{
		id:   id,
		pool: p,
		jobs: make(chan Job),
	}
	p.workerList = append(p.workerList, worker)

	p.metrics.mu.Lock()
	p.metrics.WorkerCount++
	p.metrics.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		worker.run(p.ctx)
	}()
}

/*
ParallelFor runs fn over [0, n) split into contiguous chunks and returns
once all of them finished. Chunks never overlap, so fn may write to the
indices it is given without synchronization. A range that fits in a single
chunk runs on the calling goroutine.

If ctx is cancelled no further chunks are queued; chunks already queued
still run and ctx.Err() is returned after they finish. ParallelFor never
returns while a chunk is still running, even when the pool shuts down
mid-pass; chunks that never ran then fail with ErrPoolClosed.
*/
func (p *Pool) ParallelFor(ctx context.Context, n int, fn func(lo, hi int)) error {
	if n < 0 {
		return fmt.Errorf("%w: negative range %d", ErrInvalidArgument, n)
	}
	if n == 0 {
		return nil
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	chunk := p.chunkSize(n)
	batch := newPass(p.nextPass())

	p.metrics.recordPass()

	if chunk >= n {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch.add(1)
		job := Job{ID: p.jobID(batch.id, 0), Lo: 0, Hi: n, Fn: fn, StartTime: time.Now(), pass: batch}
		err := job.run()
		p.metrics.recordChunk(job.StartTime, err == nil)
		batch.finish(err)
		return batch.err
	}

	var scheduleErr error
	chunks := (n + chunk - 1) / chunk
	batch.add(chunks)

	for c := 0; c < chunks; c++ {
		lo := c * chunk
		hi := min(lo+chunk, n)
		job := Job{ID: p.jobID(batch.id, c), Lo: lo, Hi: hi, Fn: fn, StartTime: time.Now(), pass: batch}

		if scheduleErr = p.enqueue(ctx, job); scheduleErr != nil {
			// Account for the chunks that will never be queued.
			for skipped := c; skipped < chunks; skipped++ {
				batch.finish(nil)
			}
			break
		}
	}

	p.await(batch)

	if scheduleErr != nil {
		return scheduleErr
	}
	return batch.err
}

func (p *Pool) enqueue(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// chunkSize spreads n over the workers without going below MinChunk.
func (p *Pool) chunkSize(n int) int {
	workers := len(p.workerList)
	chunk := (n + workers - 1) / workers
	return max(chunk, p.config.MinChunk)
}

func (p *Pool) nextPass() uint64 {
	p.passMu.Lock()
	defer p.passMu.Unlock()
	p.passes++
	return p.passes
}

func (p *Pool) jobID(pass uint64, chunk int) string {
	return fmt.Sprintf("pass-%d/%d", pass, chunk)
}

// Close waits for in-flight passes, then stops every worker.
func (p *Pool) Close() {
	if p == nil {
		return
	}

	p.closeMu.Lock()
	defer p.closeMu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	p.cancel()
	p.wg.Wait()

	for _, worker := range p.workerList {
		close(worker.jobs)
	}
	close(p.jobs)
	close(p.workers)

	errnie.Debug("pool closed after %d passes", p.passes)
}
