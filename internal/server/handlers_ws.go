package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/pscheid92/rankpulse/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// clientRegistry caps concurrent WebSocket subscribers.
type clientRegistry struct {
	mu    sync.Mutex
	count int
	max   int
}

func newClientRegistry(max int) *clientRegistry {
	return &clientRegistry{max: max}
}

func (r *clientRegistry) tryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count >= r.max {
		return false
	}
	r.count++
	return true
}

func (r *clientRegistry) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count--
}

// rankingUpdate is the push payload: one message per flush cycle carrying
// the affected categories and their fresh rankings.
type rankingUpdate struct {
	Categories []string                        `json:"categories"`
	Rankings   map[string][]domain.RankedEntry `json:"rankings"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	if !s.wsClients.tryAcquire() {
		return c.String(http.StatusServiceUnavailable, "subscriber limit reached")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.wsClients.release()
		slog.Warn("Failed to upgrade WebSocket", "error", err)
		return nil
	}

	metrics.WebSocketClients.Inc()
	cw := newClientWriter(conn, s.clock)

	// The listener runs on the bus goroutine: build the payload, hand it
	// to the client's writer, and cut slow clients loose rather than
	// stalling delivery to everyone else.
	subID := s.app.Subscribe(func(categories []string) {
		payload := s.buildUpdate(categories)
		if payload == nil {
			return
		}
		if !cw.trySend(payload) {
			metrics.WebSocketSlowClientsEvicted.Inc()
			slog.Warn("Disconnecting slow WebSocket client")
			cw.stop()
		}
	})

	// Read pump: blocks until the client disconnects or is evicted.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	if err := s.app.Unsubscribe(subID); err != nil {
		slog.Warn("Failed to remove subscription", "subscription_id", subID.String(), "error", err)
	}
	cw.stop()
	s.wsClients.release()
	metrics.WebSocketClients.Dec()

	return nil
}

func (s *Server) buildUpdate(categories []string) []byte {
	update := rankingUpdate{
		Categories: categories,
		Rankings:   make(map[string][]domain.RankedEntry, len(categories)),
	}
	for _, category := range categories {
		entries, err := s.app.Products(context.Background(), category)
		if err != nil {
			slog.Error("Failed to load ranking for update", "category", category, "error", err)
			continue
		}
		update.Rankings[category] = entries
	}

	data, err := json.Marshal(update)
	if err != nil {
		slog.Error("Failed to marshal ranking update", "error", err)
		return nil
	}
	return data
}
