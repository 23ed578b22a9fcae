// Package server exposes a running workflow over HTTP: Prometheus metrics,
// a JSON status document and a websocket stream of workflow events.
package server

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/workflow"
)

// ShutdownTimeout bounds how long Shutdown waits for client goroutines.
const ShutdownTimeout = 5 * time.Second

// Host is the critical section the status handler enters before reading
// controller state.
type Host interface {
	Suspend() (release func())
	Frame() int
}

// EventMessage is the websocket frame sent for each workflow event.
type EventMessage struct {
	Type       string `json:"type"`
	Kind       string `json:"kind"`
	Frame      int    `json:"frame"`
	JobID      int    `json:"job_id,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Text       string `json:"text"`
	Delayed    bool   `json:"delayed,omitempty"`
}

// StatusDocument is served at /status.
type StatusDocument struct {
	Frame       int                         `json:"frame"`
	Status      workflow.StatusReport       `json:"status"`
	Meltable    int                         `json:"meltable"`
	Constraints []workflow.ConstraintReport `json:"constraints"`
	Jobs        workflow.JobsReport         `json:"jobs"`
}

// Server broadcasts workflow events to websocket clients and serves the
// status and metrics endpoints. It implements workflow.Notifier.
type Server struct {
	wf       *workflow.Workflow
	host     Host
	metrics  http.Handler
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	httpServer *http.Server
	addr       net.Addr
}

// New creates a server. metrics may be nil, in which case /metrics is not
// registered.
func New(wf *workflow.Workflow, host Host, metrics http.Handler, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		wf:      wf,
		host:    host,
		metrics: metrics,
		logger:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 2048,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*client]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	// Built up front so Shutdown can stop a server whose ListenAndServe has
	// not reached Serve yet.
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// checkOrigin accepts clients without an Origin header and same-host pages.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return sameHost(u.Host, r.Host)
}

func sameHost(a, b string) bool {
	if ha, _, err := net.SplitHostPort(a); err == nil {
		a = ha
	}
	if hb, _, err := net.SplitHostPort(b); err == nil {
		b = hb
	}
	return a == b
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/status", s.handleStatus)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// ListenAndServe serves until Shutdown. It returns nil after a clean shutdown,
// including a Shutdown that happened before the listener was bound.
func (s *Server) ListenAndServe(addr string) error {
	if s.ctx.Err() != nil {
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Infow("HTTP server listening", "address", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "failed to serve on %s", addr)
	}
	return nil
}

// Addr returns the bound listener address, or nil before ListenAndServe has
// bound it.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Shutdown closes client connections and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	toClose := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		toClose = append(toClose, c)
		delete(s.clients, c)
	}
	s.mu.Unlock()

	if len(toClose) > 0 {
		s.logger.Infow("Closing client connections", "count", len(toClose))
		for _, c := range toClose {
			c.close()
		}
	}
	s.cancel()

	err := s.httpServer.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Shutdown timeout, some client goroutines may still be running")
	}
	return err
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Notify broadcasts an event. It runs inside the host critical section and
// never blocks: a client whose buffer is full misses the event.
func (s *Server) Notify(e workflow.Event) {
	msg := EventMessage{
		Type:       "event",
		Kind:       e.Kind.String(),
		JobID:      e.JobID,
		Constraint: e.Constraint,
		Text:       e.Text,
		Delayed:    e.Delayed,
	}
	if s.host != nil {
		msg.Frame = s.host.Frame()
	}
	s.broadcast(msg)
}

// broadcast returns the number of clients that accepted the message.
func (s *Server) broadcast(msg EventMessage) int {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		select {
		case c.send <- msg:
			sent++
		default:
		}
	}
	return sent
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Debugw("Client connected", "client_id", c.id, "clients", n)
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
	}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Debugw("Client disconnected", "client_id", c.id, "clients", n)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warnw("WebSocket upgrade failed", "error", err.Error())
		return
	}
	c := newClient(s, conn)
	s.register(c)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		c.writePump()
	}()
	go func() {
		defer s.wg.Done()
		c.readPump()
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.wf == nil || s.host == nil {
		writeError(w, http.StatusServiceUnavailable, "workflow not loaded")
		return
	}

	release := s.host.Suspend()
	doc := StatusDocument{
		Frame:       s.host.Frame(),
		Status:      s.wf.Status(),
		Meltable:    s.wf.Meltable(),
		Constraints: s.wf.ConstraintReports(),
		Jobs:        s.wf.JobsReport(nil),
	}
	release()

	if err := writeJSON(w, http.StatusOK, doc); err != nil {
		s.logger.Warnw("Failed to write status", "error", err.Error())
	}
}
