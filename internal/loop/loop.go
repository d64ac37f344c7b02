// Package loop provides the single serial context that owns all routing
// state. Producers on other goroutines hand work to it with Post.
package loop

import (
	"context"
	"sync"
	"time"
)

const defaultBuffer = 1024

// Loop runs posted funcs one at a time, in order.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

func New() *Loop {
	return &Loop{
		tasks: make(chan func(), defaultBuffer),
		done:  make(chan struct{}),
	}
}

// Post queues f. It blocks while the queue is full and returns false once
// the loop has stopped.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.done:
		return false
	}
}

// AfterFunc posts f to the loop after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() {
		l.Post(f)
	})
}

// Run executes posted funcs until ctx is done. Use either Run or Drain as
// the serial context, never both.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.tasks:
			f()
		}
	}
}

// Drain executes every queued func without waiting and reports how many
// ran. A host that already owns a frame loop calls it once per frame.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case f := <-l.tasks:
			f()
			n++
		default:
			return n
		}
	}
}

// Stop makes further Posts fail. Queued funcs are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
