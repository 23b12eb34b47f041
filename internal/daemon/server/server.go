// Package server serves the widget snapshot over HTTP for the daemon.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/watchfire-io/taskwidget/internal/config"
	"github.com/watchfire-io/taskwidget/internal/daemon/refresher"
	"github.com/watchfire-io/taskwidget/internal/render"
)

// Snapshots is what the server needs from the refresher.
type Snapshots interface {
	Last() (refresher.Snapshot, bool)
	Trigger()
	SnapshotPath() string
}

// Server is the daemon's HTTP server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	port       int
	snapshots  Snapshots
	started    time.Time
}

// New creates a new server listening on localhost at the specified port.
// Pass port 0 for dynamic allocation.
func New(port int, snapshots Snapshots) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	srv := &Server{
		listener:  listener,
		port:      listener.Addr().(*net.TCPAddr).Port,
		snapshots: snapshots,
		started:   time.Now(),
	}
	srv.httpServer = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleWidget)
	mux.HandleFunc("GET /widget.html", s.handleWidget)
	mux.HandleFunc("GET /style.css", s.handleStylesheet)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	if err := s.httpServer.Serve(s.listener); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
	// Shutdown only closes listeners passed to Serve.
	_ = s.listener.Close()
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshots.Last()
	if !ok {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "widget not rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Render-ID", snap.RenderID)
	_, _ = w.Write(snap.Document)
}

// handleStylesheet serves the stylesheet next to the snapshot, so user
// edits show up without a restart, falling back to the embedded default.
func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	css, err := os.ReadFile(config.StylesheetFile(s.snapshots.SnapshotPath()))
	if err != nil {
		css = render.DefaultStylesheet
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(css)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.snapshots.Trigger()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"ok":      true,
		"service": "taskwidgetd",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	}
	if snap, ok := s.snapshots.Last(); ok {
		body["render_id"] = snap.RenderID
		body["kind"] = snap.Result.Kind.String()
		body["tasks"] = len(snap.Result.List.Tasks)
		body["rendered_at"] = snap.At.UTC().Format(time.RFC3339)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// RequestShutdown sends SIGINT to the current process to trigger a graceful shutdown.
func RequestShutdown() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	_ = p.Signal(syscall.SIGINT)
}
