package websocket

import (
	"log"
	"net/http"
	"sync"

	"lexhub/internal/socratic"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionRoom holds the clients watching one session's event stream.
type SessionRoom struct {
	sessionID string
	clients   map[*websocket.Conn]*Client
	mu        sync.RWMutex
	consumer  *socratic.StreamConsumer
}

// Client is one connected event-stream subscriber.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Hub fans engine events out to the WebSocket clients of each session.
// When Redis is configured, events arrive through the stream consumer so
// every instance serves its local clients; without Redis the session
// service's callback broadcasts directly.
type Hub struct {
	rooms map[string]*SessionRoom
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*SessionRoom)}
}

// Attach registers a connection with a session's room, creating the room and
// its stream consumer on first use.
func (h *Hub) Attach(sessionID string, conn *websocket.Conn) *Client {
	h.mu.Lock()
	room, exists := h.rooms[sessionID]
	if !exists {
		room = &SessionRoom{
			sessionID: sessionID,
			clients:   make(map[*websocket.Conn]*Client),
			consumer:  socratic.NewStreamConsumer(h),
		}
		h.rooms[sessionID] = room
		if room.consumer != nil {
			go room.consumer.StartConsumerGroup(sessionID)
		}
	}
	h.mu.Unlock()

	client := &Client{conn: conn}
	room.mu.Lock()
	room.clients[conn] = client
	total := len(room.clients)
	room.mu.Unlock()

	log.Printf("Client joined session %s stream (total clients: %d)", sessionID, total)
	return client
}

// Detach removes a connection, deleting the room when it empties.
func (h *Hub) Detach(sessionID string, conn *websocket.Conn) {
	h.mu.RLock()
	room, exists := h.rooms[sessionID]
	h.mu.RUnlock()
	if !exists {
		return
	}

	room.mu.Lock()
	delete(room.clients, conn)
	remaining := len(room.clients)
	room.mu.Unlock()

	if remaining == 0 {
		h.mu.Lock()
		delete(h.rooms, sessionID)
		h.mu.Unlock()
		log.Printf("Session %s stream room deleted as it became empty", sessionID)
	}
}

// BroadcastToSession implements socratic.SessionHub.
func (h *Hub) BroadcastToSession(sessionID string, event *socratic.Event) {
	h.mu.RLock()
	room, exists := h.rooms[sessionID]
	h.mu.RUnlock()
	if !exists {
		return
	}

	room.mu.RLock()
	defer room.mu.RUnlock()
	for _, client := range room.clients {
		client.writeMu.Lock()
		if err := client.conn.WriteJSON(event); err != nil {
			log.Printf("WebSocket write error for session %s: %v", sessionID, err)
		}
		client.writeMu.Unlock()
	}
}

// Publish delivers an engine event: through the Redis Stream when available
// (the consumer group forwards it back to local clients), directly otherwise.
func (h *Hub) Publish(sessionID string, event *socratic.Event) {
	if err := socratic.PublishEvent(sessionID, event); err == nil {
		return
	}
	h.BroadcastToSession(sessionID, event)
}

// StreamHandler upgrades the connection and keeps it attached to the
// session's event stream until the client goes away. Client messages are
// read and discarded; the stream is one-way.
func (h *Hub) StreamHandler(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session parameter"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	h.Attach(sessionID, conn)
	defer func() {
		h.Detach(sessionID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("WebSocket read error for session %s: %v", sessionID, err)
			return
		}
	}
}
