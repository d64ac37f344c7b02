package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// SourceLister reports whether a controller name is currently routed.
type SourceLister interface {
	HasSource(name string) bool
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	source string // only events from this controller; empty for all
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// SetSource restricts the client to one controller's events.
func (c *Client) SetSource(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
}

// Watches reports whether the client wants events from source.
func (c *Client) Watches(source string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return source == "" || c.source == "" || c.source == source
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// ReadPumpWithHandler reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPumpWithHandler(sources SourceLister) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handle(message, sources)
	}
}

func (c *Client) handle(message []byte, sources SourceLister) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(message, &clientMsg); err != nil {
		log.Printf("Error parsing client message: %v", err)
		return
	}

	switch clientMsg.Type {
	case "select_source":
		if clientMsg.Source != "" && !sources.HasSource(clientMsg.Source) {
			log.Printf("Failed to select source %q: not routed", clientMsg.Source)
			return
		}
		c.SetSource(clientMsg.Source)
		data, _ := json.Marshal(NewSourceSelectedMessage(clientMsg.Source))
		select {
		case c.send <- data:
		default:
		}
		log.Printf("Client switched to source %q", clientMsg.Source)
	}
}
