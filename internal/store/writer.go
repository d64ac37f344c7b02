package store

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/soar/padroute/internal/mapping"
)

const writeQueue = 64

type job struct {
	controller string
	gameType   string
	m          *mapping.Mapping
	delete     bool
	soft       bool
	barrier    chan struct{}
}

// Result reports one finished write.
type Result struct {
	Controller string
	GameType   string
	Deleted    bool
	Err        error
}

// Writer saves and deletes overrides on its own goroutine so the input
// loop never waits on the filesystem. Jobs run in the order they were
// queued.
type Writer struct {
	p    mapping.Persister
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool

	done atomic.Pointer[func(Result)]
}

func NewWriter(p mapping.Persister) *Writer {
	w := &Writer{p: p, jobs: make(chan job, writeQueue)}
	w.wg.Add(1)
	go w.run()
	return w
}

// OnDone sets the callback run on the writer goroutine after each job.
// Safe to call while jobs are running.
func (w *Writer) OnDone(f func(Result)) {
	w.done.Store(&f)
}

func (w *Writer) run() {
	defer w.wg.Done()
	for j := range w.jobs {
		if j.barrier != nil {
			close(j.barrier)
			continue
		}
		res := Result{Controller: j.controller, GameType: j.gameType, Deleted: j.delete}
		if j.delete {
			res.Err = w.p.DeleteOverride(j.controller, j.gameType, j.soft)
			if errors.Is(res.Err, mapping.ErrNotFound) {
				res.Err = nil
			}
		} else {
			res.Err = w.p.SaveOverride(j.controller, j.gameType, j.m)
		}
		switch {
		case res.Err != nil:
			log.Printf("Failed to write mapping for %s/%s: %v", j.controller, j.gameType, res.Err)
		case j.delete:
			log.Printf("Deleted mapping for %s/%s", j.controller, j.gameType)
		default:
			log.Printf("Saved mapping for %s/%s", j.controller, j.gameType)
		}
		if f := w.done.Load(); f != nil && *f != nil {
			(*f)(res)
		}
	}
}

func (w *Writer) queue(j job) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		log.Printf("Dropping mapping write for %s/%s: writer closed", j.controller, j.gameType)
		return
	}
	w.jobs <- j
}

// SaveAsync queues a save. Saves queued after Close are dropped.
func (w *Writer) SaveAsync(controller, gameType string, m *mapping.Mapping) {
	w.queue(job{controller: controller, gameType: gameType, m: m})
}

// DeleteAsync queues a delete behind every save queued so far. A missing
// record is not an error.
func (w *Writer) DeleteAsync(controller, gameType string, soft bool) {
	w.queue(job{controller: controller, gameType: gameType, delete: true, soft: soft})
}

// Flush waits for every job queued so far.
func (w *Writer) Flush() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	done := make(chan struct{})
	w.jobs <- job{barrier: done}
	w.mu.Unlock()
	<-done
}

// Close waits for queued jobs to finish.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
