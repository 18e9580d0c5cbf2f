// Package worker runs fire-and-forget background tasks such as analytics writes.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"kashpages/internal/platform/logger"
)

// Task is a function that represents a background job.
type Task func(ctx context.Context) error

type Pool struct {
	tasks     chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool
	timeout   time.Duration
	log       *logger.Logger
}

// NewPool starts size workers sharing a queue of capacity queue.
func NewPool(size, queue int, log *logger.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queue < 1 {
		queue = 1000
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &Pool{
		tasks:   make(chan Task, queue),
		timeout: 10 * time.Second,
		log:     log.With("component", "worker"),
	}
	for range size {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := task(ctx); err != nil {
			p.log.Warn("worker task failed", "error", err)
		}
		cancel()
	}
}

// Submit queues t. It reports false when the pool is shutting down or the queue is full.
func (p *Pool) Submit(t Task) (queued bool) {
	if p.isClosing.Load() {
		p.log.Warn("task submitted during shutdown, dropping")
		return false
	}
	defer func() {
		// Shutdown may close the queue between the check above and the send
		if recover() != nil {
			queued = false
		}
	}()
	select {
	case p.tasks <- t:
		return true
	default:
		p.log.Warn("task queue full, dropping task")
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Shutdown() {
	if p.isClosing.Swap(true) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}
