// Package status exposes the assistant's current state over a small
// websocket server, for dashboards and home automation listeners.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"VoiceChat/internal/assistant"
)

// StateMessage is the JSON payload sent to every connected client.
type StateMessage struct {
	State assistant.State `json:"state"`
}

// Server broadcasts state transitions to websocket subscribers. New
// clients immediately receive the current state.
type Server struct {
	addr     string
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*websocket.Conn
	state   assistant.State

	httpServer *http.Server
}

// NewServer creates a status server listening on addr.
func NewServer(addr string, logger *slog.Logger) *Server {
	s := &Server{
		addr:    addr,
		logger:  logger,
		clients: make(map[string]*websocket.Conn),
		state:   assistant.StateIdle,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("status server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", "error", err)
		}
	}()
}

// Shutdown closes all client connections and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, conn := range s.clients {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()

	return s.httpServer.Shutdown(ctx)
}

// Publish sends the new state to every connected client. Clients whose
// connection has gone away are dropped.
func (s *Server) Publish(state assistant.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	msg := StateMessage{State: state}
	for id, conn := range s.clients {
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Info("dropping status client", "client_id", id, "error", err)
			conn.Close()
			delete(s.clients, id)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.clients[id] = conn
	current := s.state
	err = conn.WriteJSON(StateMessage{State: current})
	s.mu.Unlock()

	if err != nil {
		s.remove(id)
		return
	}

	s.logger.Info("status client connected", "client_id", id)

	// drain the connection so pings are answered and closes are seen
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.remove(id)
				s.logger.Info("status client disconnected", "client_id", id)
				return
			}
		}
	}()
}

func (s *Server) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn, ok := s.clients[id]; ok {
		conn.Close()
		delete(s.clients, id)
	}
}

// ClientCount reports the number of connected subscribers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

var _ assistant.Notifier = (*Server)(nil)
