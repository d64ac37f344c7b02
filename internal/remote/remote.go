// Package remote accepts touch and key events from a browser or another
// device over a websocket and replays them on the input loop.
package remote

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lxzan/gws"

	"github.com/soar/padroute/internal/contact"
	"github.com/soar/padroute/internal/skin"
)

const (
	pingInterval = 10 * time.Second
	pingWait     = 2 * pingInterval
)

// Poster runs f on the input loop.
type Poster interface {
	Post(f func()) bool
}

// Sink receives decoded events on the input loop.
type Sink interface {
	TouchBegan(id contact.ID, p skin.Point)
	TouchMoved(id contact.ID, p skin.Point)
	TouchEnded(id contact.ID, p skin.Point)
	TouchCancelled(id contact.ID, p skin.Point)
	KeyDown(key string)
	KeyUp(key string)
}

// Message is one event from a remote client. Touch points are normalised
// to the skin's unit square.
type Message struct {
	Type  string  `json:"type"`            // "touch" or "key"
	Phase string  `json:"phase,omitempty"` // touch: began, moved, ended, cancelled
	ID    int     `json:"id,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Key   string  `json:"key,omitempty"`
	Down  bool    `json:"down,omitempty"`
}

// session tracks what one connection holds so it can be released when the
// connection drops.
type session struct {
	base    contact.ID
	touches map[contact.ID]bool
	keys    map[string]bool
}

// Handler is the gws event handler for remote connections.
type Handler struct {
	gws.BuiltinEventHandler

	loop  Poster
	sink  Sink
	debug bool

	next     atomic.Int32
	mu       sync.Mutex
	sessions map[*gws.Conn]*session
	upgrader *gws.Upgrader
}

func NewHandler(loop Poster, sink Sink, debug bool) *Handler {
	h := &Handler{
		loop:     loop,
		sink:     sink,
		debug:    debug,
		sessions: make(map[*gws.Conn]*session),
	}
	h.upgrader = gws.NewUpgrader(h, &gws.ServerOption{
		ParallelEnabled:   false,
		Recovery:          gws.Recovery,
		PermessageDeflate: gws.PermessageDeflate{Enabled: true},
	})
	return h
}

// ServeHTTP upgrades the request and reads the connection until it closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r)
	if err != nil {
		log.Printf("Remote upgrade failed: %v", err)
		return
	}
	go socket.ReadLoop()
}

// Connections returns the number of open remote connections.
func (h *Handler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Handler) OnOpen(socket *gws.Conn) {
	_ = socket.SetDeadline(time.Now().Add(pingWait))
	s := &session{
		// Touch ids from different connections must not collide.
		base:    contact.ID(h.next.Add(1)) << 16,
		touches: make(map[contact.ID]bool),
		keys:    make(map[string]bool),
	}
	h.mu.Lock()
	h.sessions[socket] = s
	n := len(h.sessions)
	h.mu.Unlock()
	log.Printf("Remote connected: %s (total: %d)", socket.RemoteAddr(), n)
}

func (h *Handler) OnClose(socket *gws.Conn, err error) {
	h.mu.Lock()
	s, ok := h.sessions[socket]
	delete(h.sessions, socket)
	n := len(h.sessions)
	h.mu.Unlock()
	if !ok {
		return
	}
	log.Printf("Remote disconnected: %v (total: %d)", err, n)

	h.loop.Post(func() {
		for id := range s.touches {
			h.sink.TouchCancelled(id, skin.Point{})
		}
		for key := range s.keys {
			h.sink.KeyUp(key)
		}
	})
}

func (h *Handler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(pingWait))
	_ = socket.WritePong(payload)
}

func (h *Handler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = socket.SetDeadline(time.Now().Add(pingWait))

	var msg Message
	if err := json.Unmarshal(message.Bytes(), &msg); err != nil {
		log.Printf("Error parsing remote message: %v", err)
		return
	}

	h.mu.Lock()
	s, ok := h.sessions[socket]
	h.mu.Unlock()
	if !ok {
		return
	}

	f, err := s.decode(msg, h.sink)
	if err != nil {
		log.Printf("Ignoring remote message: %v", err)
		return
	}
	if h.debug {
		log.Printf("[DEBUG] Remote %s %s id=%d (%.3f, %.3f) key=%s", msg.Type, msg.Phase, msg.ID, msg.X, msg.Y, msg.Key)
	}
	if !h.loop.Post(f) {
		log.Printf("Input loop stopped, dropping remote %s", msg.Type)
	}
}

// decode turns msg into a call on sink. The session's bookkeeping is only
// touched from the connection's read goroutine.
func (s *session) decode(msg Message, sink Sink) (func(), error) {
	switch msg.Type {
	case "touch":
		id := s.base | contact.ID(msg.ID&0xFFFF)
		p := skin.Point{X: msg.X, Y: msg.Y}
		switch msg.Phase {
		case "began":
			s.touches[id] = true
			return func() { sink.TouchBegan(id, p) }, nil
		case "moved":
			return func() { sink.TouchMoved(id, p) }, nil
		case "ended":
			delete(s.touches, id)
			return func() { sink.TouchEnded(id, p) }, nil
		case "cancelled":
			delete(s.touches, id)
			return func() { sink.TouchCancelled(id, p) }, nil
		}
		return nil, fmt.Errorf("unknown touch phase %q", msg.Phase)

	case "key":
		if msg.Key == "" {
			return nil, fmt.Errorf("key event without a key")
		}
		key := msg.Key
		if msg.Down {
			s.keys[key] = true
			return func() { sink.KeyDown(key) }, nil
		}
		delete(s.keys, key)
		return func() { sink.KeyUp(key) }, nil
	}
	return nil, fmt.Errorf("unknown message type %q", msg.Type)
}
