package realtime

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize    = 4096
	defaultBufferSize = 16
)

// Hub fans verification lifecycle events out to dashboard clients. Each
// connection subscribes to a single guild's stream; slow consumers are
// dropped rather than allowed to stall the publisher.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*connection]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*connection]struct{}),
		logger:  logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
	}
}

// Serve upgrades the HTTP connection and streams the guild's events until
// the client disconnects.
func (h *Hub) Serve(guildID string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("guild_id", guildID), zap.Error(err))
		return
	}

	client := newConnection(h, conn, guildID)
	h.register(client)

	go client.writeLoop()
	client.readLoop()
}

// Publish delivers an event to every client watching the guild.
func (h *Hub) Publish(guildID string, event services.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[guildID] {
		select {
		case client.send <- event:
		default:
			h.logger.Warn("dropping slow dashboard client", zap.String("guild_id", guildID))
			go client.close()
		}
	}
}

// ClientCount reports how many connections are watching the guild.
func (h *Hub) ClientCount(guildID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[guildID])
}

func (h *Hub) register(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.guildID] == nil {
		h.clients[client.guildID] = make(map[*connection]struct{})
	}
	h.clients[client.guildID][client] = struct{}{}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	guildClients := h.clients[client.guildID]
	delete(guildClients, client)
	if len(guildClients) == 0 {
		delete(h.clients, client.guildID)
	}
}

type connection struct {
	hub     *Hub
	socket  *websocket.Conn
	guildID string
	send    chan services.Event
	once    sync.Once
}

func newConnection(hub *Hub, socket *websocket.Conn, guildID string) *connection {
	return &connection{
		hub:     hub,
		socket:  socket,
		guildID: guildID,
		send:    make(chan services.Event, defaultBufferSize),
	}
}

// readLoop drains the connection to keep pong handling alive. Clients do
// not send application messages on this stream.
func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("unexpected close", zap.String("guild_id", c.guildID), zap.Error(err))
			}
			return
		}
	}
}

func (c *connection) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		close(c.send)
		_ = c.socket.Close()
	})
}

func hostWithoutPort(value string) string {
	value = strings.TrimPrefix(value, "http://")
	value = strings.TrimPrefix(value, "https://")
	value = strings.TrimPrefix(value, "ws://")
	value = strings.TrimPrefix(value, "wss://")
	if idx := strings.Index(value, "/"); idx >= 0 {
		value = value[:idx]
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		return host
	}
	return value
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
