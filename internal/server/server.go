// Package server is the loopback HTTP endpoint that receives locate requests
// from the page and hands them to the editor launcher.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"bennypowers.dev/code-inspector/internal/config"
	"bennypowers.dev/code-inspector/internal/editor"
	"bennypowers.dev/code-inspector/internal/log"
)

// DefaultPort is tried first when no port is configured
const DefaultPort = config.DefaultPort

// maxPortAttempts bounds the search for a free port above the requested one
const maxPortAttempts = 20

// Launcher opens a location in an editor; editor.Launcher implements it
type Launcher interface {
	Launch(ctx context.Context, req editor.Request) (editor.Command, error)
}

// Server answers the locate beacon protocol: GET /?file=&line=&column=
type Server struct {
	launcher Launcher
	version  string

	// ctx outlives individual requests so launches are not cancelled when the
	// beacon's connection closes
	ctx      context.Context
	cancel   context.CancelFunc
	launches sync.WaitGroup

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

// New creates a server
func New(launcher Launcher, version string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		launcher: launcher,
		version:  version,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleLocate)
	return mux
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "*")
	h.Set("Access-Control-Allow-Private-Network", "true")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": s.version})
}

// parseRequest reads the location triple. Line and column default to 1.
func parseRequest(r *http.Request) (editor.Request, error) {
	q := r.URL.Query()
	req := editor.Request{File: q.Get("file"), Line: 1, Column: 1}
	if req.File == "" {
		return req, fmt.Errorf("%w: missing file", editor.ErrInvalidRequest)
	}
	for name, dst := range map[string]*int{"line": &req.Line, "column": &req.Column} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("%w: %s=%q", editor.ErrInvalidRequest, name, v)
		}
		*dst = n
	}
	return req, nil
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseRequest(r)
	if err != nil {
		log.Debug("rejected locate request %s: %v", r.URL.RawQuery, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Respond before the editor starts; the page ignores the body.
	s.launches.Add(1)
	go func() {
		defer s.launches.Done()
		if _, err := s.launcher.Launch(s.ctx, req); err != nil {
			log.Debug("launch %s: %v", req.File, err)
		}
	}()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte("ok"))
	}
}

// Listen binds host:port. When port is taken, the next ports are tried.
// Port 0 picks any free port. Returns the bound port.
func (s *Server) Listen(host string, port int) (int, error) {
	var lastErr error
	attempts := maxPortAttempts
	if port == 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port+i)))
		if err != nil {
			lastErr = err
			continue
		}
		s.mu.Lock()
		s.listener = ln
		s.mu.Unlock()
		return ln.Addr().(*net.TCPAddr).Port, nil
	}
	return 0, fmt.Errorf("no free port from %d: %w", port, lastErr)
}

// Serve handles requests on the bound listener until Shutdown
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	if ln == nil {
		s.mu.Unlock()
		return errors.New("server is not listening")
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for pending launches to start
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, ln := s.http, s.listener
	s.mu.Unlock()

	var err error
	switch {
	case srv != nil:
		err = srv.Shutdown(ctx)
	case ln != nil:
		err = ln.Close()
	}
	s.Wait()
	s.cancel()
	return err
}

// Wait blocks until every accepted launch has been handed to the spawner
func (s *Server) Wait() {
	s.launches.Wait()
}
