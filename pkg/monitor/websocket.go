package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.convergence/pkg/config"
	"digital.vasic.convergence/pkg/logging"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

// Message kinds sent over the websocket.
const (
	KindSnapshot = "snapshot"
	KindEvent    = "event"
)

// Message is the envelope for everything written to /ws. A new
// connection first receives a snapshot, then one event message
// per collected event.
type Message struct {
	Kind     string    `json:"kind"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

// Server streams collector events to websocket clients and
// serves the dashboard and stats as JSON.
type Server struct {
	mu        sync.RWMutex
	addr      string
	collector *EventCollector
	dashboard *Dashboard
	logger    logging.Logger
	upgrader  websocket.Upgrader
	clients   map[*client]struct{}
	server    *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a monitor server for collector. Events
// emitted from now on update the dashboard and are broadcast to
// connected clients.
func NewServer(
	addr string,
	collector *EventCollector,
	logger logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	s := &Server{
		addr:      addr,
		collector: collector,
		dashboard: NewDashboard(),
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}

	collector.Subscribe(func(past []Event) {
		for _, event := range past {
			s.dashboard.Update(event)
		}
	}, s.publish)

	return s
}

// publish applies event to the dashboard and broadcasts it. The
// read lock keeps handleWS from snapshotting between the two.
func (s *Server) publish(event Event) {
	data, err := json.Marshal(Message{Kind: KindEvent, Event: &event})

	s.mu.RLock()
	defer s.mu.RUnlock()
	s.dashboard.Update(event)
	if err != nil {
		return
	}
	s.broadcastLocked(data)
}

// FromConfig creates a server on cfg.MonitorAddr. It reports
// false when the monitor is disabled.
func FromConfig(
	cfg *config.Config,
	collector *EventCollector,
	logger logging.Logger,
) (*Server, bool) {
	if cfg.MonitorAddr == "" {
		return nil, false
	}
	return NewServer(cfg.MonitorAddr, collector, logger), true
}

// Handler returns the HTTP routes: /ws, /dashboard, /stats, and
// /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.dashboard.Snapshot())
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.collector.Stats())
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start serves until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	s.logger.Info("monitor_server_started",
		logging.StringField("addr", s.addr))

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Stop shuts the server down and disconnects all clients.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("monitor_websocket_upgrade_failed",
			logging.ErrorField(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	// The snapshot and registration share the write lock so every
	// event lands either in the snapshot or on c.send, never both.
	s.mu.Lock()
	snap := s.dashboard.Snapshot()
	data, err := json.Marshal(Message{Kind: KindSnapshot, Snapshot: &snap})
	if err != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.send <- data
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)
	s.readPump(c)
}

// readPump discards client messages and unregisters the client
// once the connection closes.
func (s *Server) readPump(c *client) {
	defer s.remove(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("monitor_websocket_read_failed",
					logging.ErrorField(err))
			}
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Warn("monitor_websocket_write_failed",
					logging.ErrorField(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// broadcastLocked queues data for every client. Callers hold s.mu.
func (s *Server) broadcastLocked(data []byte) {
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
