package fqsim

import (
	"context"

	"github.com/theapemachine/errnie"
)

// Worker processes chunks handed to it by the pool's dispatcher.
type Worker struct {
	id   int
	pool *Pool
	jobs chan Job
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
			select {
			case job := <-w.jobs:
				w.processJob(job)
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) processJob(job Job) {
	err := job.run()
	if err != nil {
		errnie.Warn("worker %d: %v", w.id, err)
	}

	w.pool.metrics.recordChunk(job.StartTime, err == nil)
	job.pass.finish(err)
}
