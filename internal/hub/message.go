package hub

import "time"

// Event is one routed activation or deactivation as a receiver saw it.
type Event struct {
	Source    string  `json:"source"`
	Input     string  `json:"input"`
	Namespace string  `json:"namespace"`
	Value     float64 `json:"value,omitempty"`
	Active    bool    `json:"active"`
}

// Snapshot is the active input set per source.
type Snapshot struct {
	Sources map[string]map[string]float64 `json:"sources"`
	Notice  string                        `json:"notice,omitempty"`
}

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string    `json:"type"`      // Message type: "full", "event", "notice", "source_selected"
	Seq       int64     `json:"seq"`       // Sequence number for ordering
	Timestamp int64     `json:"timestamp"` // Unix timestamp in milliseconds
	Event     *Event    `json:"event,omitempty"`
	Data      *Snapshot `json:"data,omitempty"`
	Notice    string    `json:"notice,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// NewFullMessage creates a "full" type message containing every active input.
func NewFullMessage(seq int64, snap *Snapshot) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      snap,
	}
}

// NewEventMessage creates an "event" type message for one routed input.
func NewEventMessage(seq int64, ev *Event) *WSMessage {
	return &WSMessage{
		Type:      "event",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Event:     ev,
	}
}

// NewNoticeMessage carries a user-facing notice such as a failed remap.
func NewNoticeMessage(seq int64, notice string) *WSMessage {
	return &WSMessage{
		Type:      "notice",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Notice:    notice,
	}
}

// NewSourceSelectedMessage confirms a client's source filter.
func NewSourceSelectedMessage(source string) *WSMessage {
	return &WSMessage{
		Type:      "source_selected",
		Timestamp: time.Now().UnixMilli(),
		Source:    source,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
}
