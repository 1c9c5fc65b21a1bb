// Package parallel runs independent jobs on a bounded set of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Pool feeds jobs to a fixed number of workers. With a single worker jobs run
// inline on the caller's goroutine, so the order of side effects is the order
// of Do calls.
type Pool struct {
	workers int
	jobs    chan func()
	wg      sync.WaitGroup
	stop    func()
}

// Workers resolves a requested worker count; values below 1 mean one worker
// per usable CPU.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

func Start(numWorkers int) *Pool {
	pool := &Pool{
		workers: Workers(numWorkers),
		stop:    func() {},
	}
	if pool.workers == 1 {
		return pool
	}

	pool.jobs = make(chan func(), pool.workers)
	for range pool.workers {
		pool.wg.Go(func() {
			for job := range pool.jobs {
				job()
			}
		})
	}
	pool.stop = sync.OnceFunc(func() { close(pool.jobs) })

	return pool
}

func (p *Pool) Size() int {
	return p.workers
}

// Do schedules job. It blocks while every worker is busy and the queue is
// full. Do must not be called after Wait.
func (p *Pool) Do(job func()) {
	if p.jobs == nil {
		job()
		return
	}
	p.jobs <- job
}

// Wait stops accepting jobs and blocks until every scheduled job returned.
func (p *Pool) Wait() {
	p.stop()
	p.wg.Wait()
}
