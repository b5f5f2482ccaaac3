package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	applogger "StockPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 45 * time.Second
	sendBufferSize = 64
)

// alertEvent is the frame pushed to connected clients.
type alertEvent struct {
	Type string      `json:"type"` // "signal" or "anomaly"
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts signal and anomaly events to WebSocket subscribers. It
// implements AlertPublisher so it composes with the Kafka publisher. Slow
// clients are disconnected rather than allowed to stall the broadcast.
type Hub struct {
	upgrader websocket.Upgrader
	l        *applogger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(l *applogger.Logger) *Hub {
	if l == nil {
		l = applogger.Nop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// same-origin policy is handled by the CORS middleware upstream
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		l:       l,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/alerts", h.Serve)
}

// Serve upgrades the connection and pumps alerts until the peer leaves.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.l.Info("ws client connected", applogger.Int("clients", n))

	go h.writePump(cl)
	h.readPump(cl)
	return nil
}

func (h *Hub) readPump(cl *client) {
	defer h.drop(cl)
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// clients never send application data; this loop only services
		// control frames and detects the close
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	_ = cl.conn.Close()
	h.l.Info("ws client disconnected", applogger.Int("clients", n))
}

func (h *Hub) broadcast(event alertEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.l.Error("ws marshal alert", applogger.Error(err))
		return
	}

	h.mu.Lock()
	stalled := make([]*client, 0)
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			stalled = append(stalled, cl)
		}
	}
	h.mu.Unlock()

	for _, cl := range stalled {
		h.drop(cl)
	}
}

// ClientCount reports currently connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) PublishSignal(ctx context.Context, inst models.Instrument, sig *models.SignalResult) error {
	h.broadcast(alertEvent{
		Type: "signal",
		At:   time.Now().UTC(),
		Data: map[string]interface{}{
			"symbol": inst.Symbol,
			"market": inst.Market,
			"signal": sig,
		},
	})
	return nil
}

func (h *Hub) PublishAnomaly(ctx context.Context, a *models.AnomalyReport) error {
	h.broadcast(alertEvent{Type: "anomaly", At: time.Now().UTC(), Data: a})
	return nil
}

// Close disconnects all subscribers and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()
	for _, cl := range clients {
		h.drop(cl)
	}
	return nil
}
