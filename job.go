package fqsim

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Job is one contiguous chunk [Lo, Hi) of a parallel pass.
type Job struct {
	ID        string
	Lo        int
	Hi        int
	Fn        func(lo, hi int)
	StartTime time.Time
	pass      *pass
}

/*
pass tracks the chunks of a single ParallelFor call. The last chunk to
finish closes done, which is the barrier the caller waits on.
*/
type pass struct {
	id      uint64
	pending atomic.Int64
	done    chan struct{}
	errOnce sync.Once
	err     error
}

func newPass(id uint64) *pass {
	return &pass{
		id:   id,
		done: make(chan struct{}),
	}
}

func (p *pass) add(n int) {
	p.pending.Add(int64(n))
}

func (p *pass) finish(err error) {
	if err != nil {
		p.errOnce.Do(func() {
			p.err = err
		})
	}
	if p.pending.Add(-1) == 0 {
		close(p.done)
	}
}

// run executes the chunk, turning a panic in Fn into an error.
func (j Job) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s [%d, %d) panicked: %v", j.ID, j.Lo, j.Hi, r)
		}
	}()

	j.Fn(j.Lo, j.Hi)
	return nil
}
