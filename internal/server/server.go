// Package server serves the event viewer, its websocket and the remote
// input endpoint.
package server

import (
	"context"
	"io/fs"
	"log"
	"net"
	"net/http"

	"github.com/soar/padroute/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	remote      http.Handler
	assets      *Assets
	addr        string
	httpServer  *http.Server
}

// New builds a server. remote may be nil to disable remote input.
func New(h *hub.Hub, b *hub.Broadcaster, remote http.Handler, frontendFS fs.FS, addr string) (*Server, error) {
	assets, err := LoadAssets(frontendFS)
	if err != nil {
		return nil, err
	}
	return &Server{
		hub:         h,
		broadcaster: b,
		remote:      remote,
		assets:      assets,
		addr:        addr,
	}, nil
}

// Handler returns the routes: /ws for viewers, /remote for remote input and
// the viewer page at /.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster))
	if s.remote != nil {
		mux.Handle("/remote", s.remote)
	}
	mux.Handle("/", s.assets)
	return mux
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	log.Printf("HTTP server listening on %s", ln.Addr())
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
