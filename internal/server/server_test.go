package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padroute/internal/hub"
	"github.com/soar/padroute/internal/input"
)

var frontend = fstest.MapFS{
	"index.html": {Data: []byte(`<!DOCTYPE html>
<html>
  <head>
    <!-- viewer -->
    <title>  padroute  </title>
  </head>
  <body>
    <p>   hello   </p>
  </body>
</html>
`)},
	"app.js":    {Data: []byte("function  add ( a , b ) {\n  return a + b ;\n}\n")},
	"logo.bin":  {Data: []byte{0, 1, 2}},
	"style.css": {Data: []byte("body {\n  color : red ;\n}\n")},
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func newTestServer(t *testing.T) (*httptest.Server, *hub.Broadcaster) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub()
	b := hub.NewBroadcaster(h, false)
	go h.Run(ctx)
	go b.Run(ctx)

	remote := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	s, err := New(h, b, remote, frontend, ":0")
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, b
}

func TestAssetsAreMinified(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	assert.NotContains(t, body, "<!-- viewer -->")
	assert.Contains(t, body, "hello")
	assert.Less(t, len(body), len(frontend["index.html"].Data))

	resp, body = get(t, srv, "/style.css")
	assert.Equal(t, "text/css", resp.Header.Get("Content-Type"))
	assert.Equal(t, "body{color:red}", body)

	_, body = get(t, srv, "/app.js")
	assert.NotContains(t, body, "\n")

	_, body = get(t, srv, "/logo.bin")
	assert.Equal(t, "\x00\x01\x02", body)

	resp, _ = get(t, srv, "/missing.html")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv, "/remote")
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestViewerWebSocket(t *testing.T) {
	srv, b := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg hub.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "full", msg.Type)

	b.Receiver("Skin").Activate(input.New("a", input.Core), 1)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, "a", msg.Event.Input)

	data, _ := json.Marshal(hub.ClientMessage{Type: "select_source", Source: "Skin"})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "source_selected", msg.Type)
	assert.Equal(t, "Skin", msg.Source)
}
