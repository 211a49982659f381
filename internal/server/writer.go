package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/rankpulse/internal/metrics"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	messageBufferSize = 16
)

// clientWriter serializes all writes to one WebSocket connection through a
// dedicated goroutine, with write deadlines and keepalive pings.
type clientWriter struct {
	connection *websocket.Conn
	clock      clockwork.Clock
	sendCh     chan []byte
	doneCh     chan struct{}
	stopOnce   sync.Once
}

func newClientWriter(connection *websocket.Conn, clock clockwork.Clock) *clientWriter {
	cw := &clientWriter{
		connection: connection,
		clock:      clock,
		sendCh:     make(chan []byte, messageBufferSize),
		doneCh:     make(chan struct{}),
	}
	cw.configurePongHandler()
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	ticker := cw.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-cw.sendCh:
			start := cw.clock.Now()
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			metrics.WebSocketMessageSendDuration.Observe(cw.clock.Since(start).Seconds())
		case <-ticker.Chan():
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cw.doneCh:
			return
		}
	}
}

// trySend enqueues a message without blocking. Returns false when the
// client's buffer is full (a slow client that should be evicted).
func (cw *clientWriter) trySend(msg []byte) bool {
	select {
	case cw.sendCh <- msg:
		return true
	default:
		return false
	}
}

// stop signals the writer goroutine and closes the connection. Safe to call
// from any goroutine, any number of times; never blocks.
func (cw *clientWriter) stop() {
	cw.stopOnce.Do(func() {
		close(cw.doneCh)
		_ = cw.connection.Close()
	})
}

func (cw *clientWriter) configurePongHandler() {
	cw.updateReadDeadline()
	cw.connection.SetPongHandler(func(string) error {
		cw.updateReadDeadline()
		return nil
	})
}

func (cw *clientWriter) updateWriteDeadline() {
	_ = cw.connection.SetWriteDeadline(cw.clock.Now().Add(writeDeadline))
}

func (cw *clientWriter) updateReadDeadline() {
	_ = cw.connection.SetReadDeadline(cw.clock.Now().Add(pongDeadline))
}
