package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padroute/internal/input"
)

func receive(t *testing.T, c *Client) *WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return nil
	}
}

func startHub(t *testing.T) (*Hub, *Broadcaster) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	b := NewBroadcaster(h, false)
	go h.Run(ctx)
	go b.Run(ctx)
	return h, b
}

func TestEventsReachWatchingClients(t *testing.T) {
	h, b := startHub(t)
	all := NewClient(h, nil)
	padOnly := NewClient(h, nil)
	padOnly.SetSource("Pad")
	h.Register(all)
	h.Register(padOnly)
	require.Eventually(t, func() bool { return h.Count() == 2 }, time.Second, time.Millisecond)

	b.Receiver("Skin").Activate(input.New("a", input.Core), 1)
	msg := receive(t, all)
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, "Skin", msg.Event.Source)
	assert.Equal(t, "a", msg.Event.Input)
	assert.Equal(t, "core", msg.Event.Namespace)
	assert.True(t, msg.Event.Active)

	b.Receiver("Pad").Deactivate(input.New("b", input.Core))
	msg = receive(t, padOnly)
	assert.Equal(t, "Pad", msg.Event.Source)
	assert.False(t, msg.Event.Active)
	assert.Equal(t, "Pad", receive(t, all).Event.Source)
}

func TestSnapshotTracksActiveInputs(t *testing.T) {
	h, b := startHub(t)
	c := NewClient(h, nil)
	h.Register(c)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, time.Millisecond)

	r := b.Receiver("Skin")
	r.Activate(input.New("up", input.Core), 0.5)
	r.Activate(input.New("a", input.Core), 1)
	r.Deactivate(input.New("a", input.Core))
	for range 3 {
		receive(t, c)
	}

	snap := b.Snapshot()
	assert.Equal(t, map[string]float64{"up": 0.5}, snap.Sources["Skin"])
	assert.True(t, b.HasSource("Skin"))
	assert.False(t, b.HasSource("Pad"))
	b.Receiver("Pad")
	assert.True(t, b.HasSource("Pad"))

	b.SendInitialState(c)
	msg := receive(t, c)
	assert.Equal(t, "full", msg.Type)
	assert.Equal(t, 0.5, msg.Data.Sources["Skin"]["up"])
}

func TestOverflowKeepsSnapshotCurrent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	b := NewBroadcaster(h, false)
	go h.Run(ctx)
	c := NewClient(h, nil)
	h.Register(c)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, time.Millisecond)

	r := b.Receiver("Skin")
	for i := range eventQueue {
		r.Activate(input.New(fmt.Sprintf("in%d", i), input.Core), 1)
	}
	// The queue is full, so this message is dropped.
	r.Deactivate(input.New("in0", input.Core))

	skin := b.Snapshot().Sources["Skin"]
	assert.NotContains(t, skin, "in0")
	assert.Len(t, skin, eventQueue-1)

	go b.Run(ctx)
	msg := receive(t, c)
	assert.Equal(t, "full", msg.Type)
	assert.NotContains(t, msg.Data.Sources["Skin"], "in0")
	assert.Contains(t, msg.Data.Sources["Skin"], "in1")
}

func TestNotice(t *testing.T) {
	h, b := startHub(t)
	c := NewClient(h, nil)
	c.SetSource("Pad")
	h.Register(c)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, time.Millisecond)

	b.Notice("Binding not found")
	msg := receive(t, c)
	assert.Equal(t, "notice", msg.Type)
	assert.Equal(t, "Binding not found", msg.Notice)
}

type sources map[string]bool

func (s sources) HasSource(name string) bool { return s[name] }

func TestSelectSource(t *testing.T) {
	c := NewClient(NewHub(), nil)
	known := sources{"Pad": true}

	c.handle([]byte(`{"type":"select_source","source":"Keyboard"}`), known)
	assert.Empty(t, c.send)
	assert.True(t, c.Watches("Keyboard"))

	c.handle([]byte(`{"type":"select_source","source":"Pad"}`), known)
	msg := receive(t, c)
	assert.Equal(t, "source_selected", msg.Type)
	assert.False(t, c.Watches("Keyboard"))
	assert.True(t, c.Watches(""))

	c.handle([]byte(`not json`), known)
	assert.Empty(t, c.send)
}
