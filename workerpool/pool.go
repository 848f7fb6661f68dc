// Package workerpool runs submitted tasks on a fixed number of long-lived
// worker goroutines fed from one shared, unbounded queue.
package workerpool

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidSize = errors.New("workerpool: size must be a positive integer")
	ErrPoolClosed  = errors.New("workerpool: pool is closed")
)

// Task is one unit of work. It is executed exactly once by whichever worker
// claims it first.
type Task func()

type Pool struct {
	size int
	log  logrus.FieldLogger

	// submit is what producers write to. forward moves tasks from submit
	// into a backlog and hands them out on tasks, so Submit never waits for
	// a free worker.
	submit chan Task
	tasks  chan Task

	mu     sync.RWMutex // guards closed against concurrent Submit and Close
	closed bool

	wg        sync.WaitGroup
	closeOnce sync.Once
	completed atomic.Int64
}

// New starts size workers. The pool lives until Close is called.
func New(size int, log logrus.FieldLogger) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	p := &Pool{
		size:   size,
		log:    log,
		submit: make(chan Task),
		tasks:  make(chan Task),
	}

	go p.forward()
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	p.log.WithField("workers", size).Debug("worker pool started")
	return p, nil
}

// Submit enqueues task. It does not wait for a worker to become idle.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("workerpool: nil task")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.submit <- task
	return nil
}

// Close stops accepting tasks and blocks until every worker has terminated.
// Tasks already queued are still executed before the workers exit.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.submit)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Pool) Size() int { return p.size }

// Completed reports how many tasks have finished, including ones that
// panicked.
func (p *Pool) Completed() int64 { return p.completed.Load() }

// forward is an unbounded channel: it accepts from submit at any time and
// offers the oldest backlog entry on tasks whenever a worker is waiting.
// Once submit is closed and the backlog is empty it closes tasks, which
// releases every worker.
func (p *Pool) forward() {
	defer close(p.tasks)

	var backlog []Task
	in := p.submit
	for in != nil || len(backlog) > 0 {
		var (
			out  chan Task
			next Task
		)
		if len(backlog) > 0 {
			out = p.tasks
			next = backlog[0]
		}

		select {
		case task, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			backlog = append(backlog, task)
		case out <- next:
			backlog[0] = nil
			backlog = backlog[1:]
		}
	}
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	log := p.log.WithField("worker", id)
	for task := range p.tasks {
		p.run(log, task)
	}
	log.Debug("worker terminated")
}

func (p *Pool) run(log logrus.FieldLogger, task Task) {
	defer func() {
		p.completed.Add(1)
		if err := recover(); err != nil {
			var trace [4096]byte
			n := runtime.Stack(trace[:], false)
			log.WithField("panic", err).Errorf("task panicked:\n%s", trace[:n])
		}
	}()
	task()
}
