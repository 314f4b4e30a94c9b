package tasks

import (
	"context"
	"log/slog"
	"sync"
)

type Task = func()

// Pool runs tasks on a fixed number of workers fed by a bounded queue.
type Pool struct {
	log        *slog.Logger
	tasks      chan Task
	maxWorkers int
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(log *slog.Logger, maxWorkers int, maxTasksQueueSize int) *Pool {
	return &Pool{
		log:        log,
		maxWorkers: max(maxWorkers, 1),
		tasks:      make(chan Task, maxTasksQueueSize),
	}
}

func (p *Pool) Run() {
	p.wg.Add(p.maxWorkers)
	for i := 0; i < p.maxWorkers; i++ {
		go func() {
			defer p.wg.Done()
			log := p.log.With("worker", i)
			for task := range p.tasks {
				p.execute(log, task)
			}
		}()
	}
}

func (p *Pool) execute(log *slog.Logger, task Task) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("panic", "err", err)
		}
	}()
	task()
}

// Add enqueues task without blocking. The task is dropped when the queue is
// full or the pool is shut down.
func (p *Pool) Add(task Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn("task dropped: pool is shut down")
		return
	}
	select {
	case p.tasks <- task:
	default:
		p.log.Warn("task dropped: queue is full", "queue_size", cap(p.tasks))
	}
}

// Shutdown stops accepting tasks and waits for the queued ones to finish.
func (p *Pool) Shutdown(ctx context.Context) error {
	const op = "tasks.Pool.Shutdown"
	log := p.log.With("op", op)
	log.Info("shutting down background tasks")
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	shutdownCh := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(shutdownCh)
	}()
	select {
	case <-ctx.Done():
		log.Warn("graceful shutdown timed out.. forcing exit", "timeout", ctx.Err())
		return ctx.Err()
	case <-shutdownCh:
		log.Info("Background tasks succesfully stopped")
		return nil
	}
}
