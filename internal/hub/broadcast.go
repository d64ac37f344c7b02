package hub

import (
	"context"
	"encoding/json"
	"log"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/input"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
	eventQueue       = 256
)

// Broadcaster turns routed events into viewer messages. Its receivers are
// called on the input loop and never block it.
type Broadcaster struct {
	hub    *Hub
	events chan queued
	notes  chan string
	debug  bool

	// Set when an event was dropped; the next full sync clears it.
	dropped atomic.Bool

	mu     sync.Mutex
	active map[string]map[string]float64
	seq    int64
}

func NewBroadcaster(h *Hub, debug bool) *Broadcaster {
	return &Broadcaster{
		hub:    h,
		events: make(chan queued, eventQueue),
		notes:  make(chan string, 8),
		debug:  debug,
		active: make(map[string]map[string]float64),
	}
}

type queued struct {
	ev  Event
	seq int64
}

type sourceReceiver struct {
	b      *Broadcaster
	source string
}

func (r *sourceReceiver) Activate(in input.Input, value float64) {
	r.b.push(Event{Source: r.source, Input: in.Name(), Namespace: in.Namespace().String(), Value: value, Active: true})
}

func (r *sourceReceiver) Deactivate(in input.Input) {
	r.b.push(Event{Source: r.source, Input: in.Name(), Namespace: in.Namespace().String()})
}

// Receiver returns a receiver that reports what it sees under source. The
// source is listed in snapshots from now on.
func (b *Broadcaster) Receiver(source string) controller.Receiver {
	b.mu.Lock()
	if _, ok := b.active[source]; !ok {
		b.active[source] = make(map[string]float64)
	}
	b.mu.Unlock()
	return &sourceReceiver{b: b, source: source}
}

// push records ev in the active set at once and queues its message. A
// full queue drops the message rather than stall the input loop.
func (b *Broadcaster) push(ev Event) {
	seq := b.apply(ev)
	select {
	case b.events <- queued{ev: ev, seq: seq}:
	default:
		b.dropped.Store(true)
	}
}

// Notice forwards a user-facing notice to every viewer.
func (b *Broadcaster) Notice(msg string) {
	select {
	case b.notes <- msg:
	default:
	}
}

// HasSource reports whether source has a receiver or has produced an event.
func (b *Broadcaster) HasSource(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.active[name]
	return ok
}

// Snapshot copies the active inputs per source.
func (b *Broadcaster) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := &Snapshot{Sources: make(map[string]map[string]float64, len(b.active))}
	for src, inputs := range b.active {
		out.Sources[src] = maps.Clone(inputs)
	}
	return out
}

func (b *Broadcaster) apply(ev Event) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	inputs, ok := b.active[ev.Source]
	if !ok {
		inputs = make(map[string]float64)
		b.active[ev.Source] = inputs
	}
	if ev.Active {
		inputs[ev.Input] = ev.Value
	} else {
		delete(inputs, ev.Input)
	}
	b.seq++
	return b.seq
}

func (b *Broadcaster) nextSeq() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	return b.seq
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var deltaCount int64

	for {
		select {
		case <-ctx.Done():
			return

		case q := <-b.events:
			deltaCount++
			if b.debug {
				log.Printf("[DEBUG] Routed %s", spew.Sdump(q.ev))
			}

			// Send full sync periodically, or at once when viewers missed events
			if b.dropped.Swap(false) || deltaCount >= deltaCountSync {
				b.sendFull(b.nextSeq())
				deltaCount = 0
			} else {
				b.send(NewEventMessage(q.seq, &q.ev), q.ev.Source)
			}

		case note := <-b.notes:
			b.send(NewNoticeMessage(b.nextSeq(), note), "")

		case <-ticker.C:
			b.dropped.Store(false)
			b.sendFull(b.nextSeq())
		}
	}
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	data, err := json.Marshal(NewFullMessage(b.nextSeq(), b.Snapshot()))
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Broadcaster) sendFull(seq int64) {
	b.send(NewFullMessage(seq, b.Snapshot()), "")
}

func (b *Broadcaster) send(msg *WSMessage, source string) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data, source)
}
