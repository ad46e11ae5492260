// Package inspect serves a development-time HTTP view of a reactive
// graph: JSON snapshots of the dependency graph, runtime counters, and
// a WebSocket stream of live propagation events. Mount the handler on a
// debug port; it is not meant for production exposure.
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/filament-ui/filament/pkg/reactive"
)

// Event is one propagation event pushed to WebSocket subscribers.
type Event struct {
	Type     string    `json:"type"`
	Node     string    `json:"node,omitempty"`
	Effects  int       `json:"effects,omitempty"`
	Duration int64     `json:"durationMicros,omitempty"`
	At       time.Time `json:"at"`
}

// Config configures the inspector.
type Config struct {
	// Logger receives connection and stream diagnostics.
	// Default: slog.Default().
	Logger *slog.Logger

	// Dispatch marshals a snapshot request onto the runtime's
	// goroutine. HTTP handlers run on their own goroutines, so a live
	// graph needs its driving loop to execute the closure. The default
	// calls the closure inline, which is only safe when the graph is
	// idle between requests.
	Dispatch func(fn func())

	// EventBuffer is the per-runtime event queue size. Events beyond it
	// are dropped rather than stalling the graph. Default: 256.
	EventBuffer int
}

// Option configures the inspector.
type Option func(*Config)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithDispatch sets the function that runs snapshot closures on the
// runtime's goroutine, typically the session loop's task queue:
//
//	inspect.WithDispatch(func(fn func()) { loop.Push(fn) })
func WithDispatch(dispatch func(fn func())) Option {
	return func(c *Config) {
		c.Dispatch = dispatch
	}
}

// WithEventBuffer sets the event queue size.
func WithEventBuffer(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EventBuffer = n
		}
	}
}

// Server inspects a single Runtime.
type Server struct {
	rt       *reactive.Runtime
	logger   *slog.Logger
	dispatch func(fn func())
	events   chan Event
	upgrader websocket.Upgrader
}

// NewServer builds an inspector for rt and installs observation hooks
// feeding the event stream. It replaces hooks previously installed on
// the runtime.
func NewServer(rt *reactive.Runtime, opts ...Option) *Server {
	cfg := Config{
		Logger:      slog.Default(),
		Dispatch:    func(fn func()) { fn() },
		EventBuffer: 256,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		rt:       rt,
		logger:   cfg.Logger,
		dispatch: cfg.Dispatch,
		events:   make(chan Event, cfg.EventBuffer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Debug tooling; the mount point gates access, not origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	rt.SetHooks(reactive.Hooks{
		OnSignalWrite: func(h reactive.Handle) {
			s.publish(Event{Type: "write", Node: h.String(), At: time.Now()})
		},
		OnMemoRecompute: func(h reactive.Handle, d time.Duration) {
			s.publish(Event{Type: "recompute", Node: h.String(), Duration: d.Microseconds(), At: time.Now()})
		},
		OnEffectRun: func(h reactive.Handle, d time.Duration) {
			s.publish(Event{Type: "effect", Node: h.String(), Duration: d.Microseconds(), At: time.Now()})
		},
		OnFlush: func(effects int, d time.Duration) {
			s.publish(Event{Type: "flush", Effects: effects, Duration: d.Microseconds(), At: time.Now()})
		},
		OnDispose: func(h reactive.Handle) {
			s.publish(Event{Type: "dispose", Node: h.String(), At: time.Now()})
		},
	})

	return s
}

// publish queues an event for streaming. Never blocks the graph; when
// the buffer is full the event is dropped.
func (s *Server) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// Handler returns the inspector's HTTP routes:
//
//	GET /api/graph   dependency graph snapshot
//	GET /api/stats   runtime counters
//	GET /ws          live event stream
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/graph", s.handleGraph)
	r.Get("/api/stats", s.handleStats)
	r.Get("/ws", s.handleWS)

	return r
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var snap reactive.GraphSnapshot
	done := make(chan struct{})
	s.dispatch(func() {
		snap = s.rt.Snapshot()
		close(done)
	})

	select {
	case <-done:
	case <-r.Context().Done():
		http.Error(w, "snapshot timed out", http.StatusGatewayTimeout)
		return
	}

	writeJSON(w, snap, s.logger)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	// Stats counters are atomic; no dispatch needed.
	writeJSON(w, s.rt.Stats(), s.logger)
}

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// handleWS upgrades the connection and streams events until the client
// disconnects. One consumer at a time drains the shared event queue;
// concurrent clients split the stream between them.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("inspector upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("inspector client connected", "remote", conn.RemoteAddr())

	// Reader goroutine: we send only, but control frames still need a
	// read pump. Its error tells us the client went away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-s.events:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("inspector write failed", "error", err)
				return
			}

		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			s.logger.Info("inspector client disconnected", "remote", conn.RemoteAddr())
			return

		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("inspector encode failed", "error", err)
	}
}
