package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"quizhub-backend/internal/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// Hub relays admin events from Redis pub/sub to every connected admin
// WebSocket. One subscription serves all connections.
type Hub struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]*models.Principal
	redisClient *redis.Client
	auth        authenticator
}

func NewHub(redisClient *redis.Client, auth authenticator) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]*models.Principal),
		redisClient: redisClient,
		auth:        auth,
	}
}

// Run subscribes to the admin events channel and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	pubsub := h.redisClient.Subscribe(ctx, models.AdminEventsChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on a WebSocket handshake, so the token
	// arrives as a query parameter.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !p.IsAdmin() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket: upgrade failed", "error", err)
		return
	}

	h.register(conn, p)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(conn *websocket.Conn, p *models.Principal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[conn] = p
	slog.Info("websocket: admin connected", "user_id", p.ID, "total", len(h.connections))
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.connections[conn]
	if !ok {
		return
	}
	delete(h.connections, conn)
	conn.Close()
	slog.Info("websocket: admin disconnected", "user_id", p.ID, "total", len(h.connections))
}

// broadcast is only called from Run, which keeps writes to each connection
// on a single goroutine.
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("websocket: write failed", "error", err)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.connections {
		conn.Close()
		delete(h.connections, conn)
	}
}

// Connections reports how many admin sockets are open.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
