// Package worker runs background jobs on a fixed pool of goroutines so
// expensive work (index builds) never extends a request's lifetime.
package worker

import (
	"log"
	"sync"
)

type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

// NewPool starts size workers draining a queue of the same size. Submit
// blocks when the queue is full rather than dropping an accepted job.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan func(), size)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit queues a job for execution.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

// Close stops accepting jobs, drains the queue and waits for all workers
// to finish.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(job)
	}
}

func (p *Pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic in background job: %v", r)
		}
	}()
	job()
}
