package worker

import (
	"context"
	"sync"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces
type Result interface {
	GetError() error
}

type task struct {
	seq int
	job Job
}

type outcome struct {
	seq    int
	result Result
}

// Pool runs jobs on a fixed number of goroutines. Wait returns results in
// submission order regardless of completion order.
type Pool struct {
	workers   int
	tasks     chan task
	outcomes  chan outcome
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	submitted int
	results   map[int]Result
	collected chan struct{}
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:   workers,
		tasks:     make(chan task, workers*2),
		outcomes:  make(chan outcome, workers*2),
		ctx:       ctx,
		cancel:    cancel,
		results:   make(map[int]Result),
		collected: make(chan struct{}),
	}
}

// Start launches the worker goroutines and the collector that drains their
// results. It must be called before Submit.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	go p.collect()
}

func (p *Pool) collect() {
	defer close(p.collected)
	for o := range p.outcomes {
		p.results[o.seq] = o.result
	}
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			// drained by collect until Wait closes outcomes
			p.outcomes <- outcome{seq: t.seq, result: t.job.Execute(p.ctx)}
		}
	}
}

// Submit queues a job. It returns false if the pool's context was cancelled before the
// job could be queued. Submit must not be called concurrently with Wait.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task{seq: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait closes the queue, waits for the workers and returns results in
// submission order. Jobs dropped by a cancelled context leave nil slots.
func (p *Pool) Wait() []Result {
	defer p.cancel()
	close(p.tasks)

	p.wg.Wait()
	close(p.outcomes)
	<-p.collected

	results := make([]Result, p.submitted)
	for seq, res := range p.results {
		results[seq] = res
	}
	return results
}
