package reactive

import (
	"context"
	"sync"
)

// Loop is a single-threaded task queue for InitLoop: the Go stand-in for
// a browser or GUI main loop. Push may be called from any goroutine;
// Tick and Run drain on the host's goroutine.
type Loop struct {
	mu    sync.Mutex
	tasks []Task
	wake  chan struct{}
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Push queues t and wakes a blocked Run.
func (l *Loop) Push(t Task) {
	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Tick runs every task queued so far, including tasks those tasks queue,
// and returns the number executed. Returns 0 when the loop was idle.
func (l *Loop) Tick() int {
	ran := 0
	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		if len(tasks) == 0 {
			return ran
		}
		for _, t := range tasks {
			t()
			ran++
		}
	}
}

// Len reports the number of queued tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Run pumps the loop until ctx is cancelled, blocking while idle. The
// calling goroutine becomes the loop's thread; tasks that touch a
// Runtime should Bind it themselves (the runtime's own flush tasks do).
func (l *Loop) Run(ctx context.Context) {
	for {
		l.Tick()
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}
