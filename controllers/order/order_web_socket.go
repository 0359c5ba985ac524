// order_websocket.go
package orderControllers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/buzcart/buzcart-api/middleware"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans order events out to the sockets each user has open.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]map[*client]struct{}
}

// client serializes writes to one socket; gorilla allows a single writer.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*client]struct{})}
}

func (h *Hub) add(userID uuid.UUID, conn *websocket.Conn) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	cl := &client{conn: conn}
	h.clients[userID][cl] = struct{}{}
	return cl
}

// remove forgets cl and closes its socket. Safe to call more than once.
func (h *Hub) remove(userID uuid.UUID, cl *client) {
	h.mu.Lock()
	conns := h.clients[userID]
	_, ok := conns[cl]
	if ok {
		delete(conns, cl)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mu.Unlock()
	if ok {
		cl.conn.Close()
	}
}

// Connections reports how many sockets userID currently holds.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Broadcast writes v as JSON to every socket of userID. The hub lock is only
// held while the socket list is copied, so a slow client delays nobody else.
// Sockets that fail the write are closed and forgotten.
func (h *Hub) Broadcast(userID uuid.UUID, v interface{}) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for cl := range h.clients[userID] {
		targets = append(targets, cl)
	}
	h.mu.Unlock()

	for _, cl := range targets {
		if err := cl.write(v); err != nil {
			log.Printf("⚠️ Dropping order socket for user %s: %v", userID, err)
			h.remove(userID, cl)
		}
	}
}

// OrderCreated lets the hub stand in as the order Notifier when no broker is
// configured. Sockets receive the same OrderEvent the broker would carry.
func (h *Hub) OrderCreated(_ context.Context, order *models.Order) error {
	h.Broadcast(order.UserID, models.NewOrderEvent(order, models.EventOrderCreated))
	return nil
}

// HandleEvent forwards an event received from the broker.
func (h *Hub) HandleEvent(event models.OrderEvent) {
	h.Broadcast(event.UserID, event)
}

// GET /orders/ws
func OrderWebSocketHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		cl := hub.add(userID, conn)
		defer hub.remove(userID, cl)

		// Clients only listen; reading detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}
