// Package tasks runs fire-and-forget background work: stats recomputation,
// audit log appends, legacy migrations. Task failures are retried a few
// times and then logged; they are never surfaced to the caller that
// submitted them, so a failed recompute cannot fail the mutation that
// triggered it.
package tasks

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

type Task func(ctx context.Context) error

// Runner executes submitted tasks sequentially on a single worker
// goroutine.
type Runner struct {
	queue   chan job
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
}

type job struct {
	name string
	run  Task
}

// NewRunner starts the worker. queueSize bounds pending tasks; when the
// queue is full Submit drops the task and logs it rather than blocking the
// submitting mutation.
func NewRunner(queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = 64
	}

	r := &Runner{
		queue: make(chan job, queueSize),
		done:  make(chan struct{}),
	}

	go r.loop()
	return r
}

// Submit enqueues a task. Never blocks and never returns an error.
func (r *Runner) Submit(name string, task Task) {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()

	if r.closed {
		log.Printf("[tasks] %s dropped: runner closed", name)
		return
	}

	select {
	case r.queue <- job{name: name, run: task}:
	default:
		log.Printf("[tasks] %s dropped: queue full", name)
	}
}

// Close stops accepting tasks, drains the queue and waits for in-flight
// work to finish.
func (r *Runner) Close() {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.closeMu.Unlock()

	<-r.done
}

func (r *Runner) loop() {
	defer close(r.done)

	for j := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

		err := retry.Do(
			func() error { return j.run(ctx) },
			retry.Context(ctx),
			retry.Attempts(3),
			retry.Delay(200*time.Millisecond),
			retry.LastErrorOnly(true),
		)
		cancel()

		if err != nil {
			log.Printf("[tasks] %s failed: %v", j.name, err)
		}
	}
}
