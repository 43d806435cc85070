// internal/moderation/websocket.go
// Live feed of moderation events for admin dashboards.

package moderation

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
)

const (
	EventConnected     = "connected"
	EventReportCreated = "report_created"
	EventReportStatus  = "report_status"
	EventTrustAdjusted = "trust_adjusted"
	EventUserBanned    = "user_banned"
	EventUserUnbanned  = "user_unbanned"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Event is one message on the feed
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

// Publisher receives moderation events. Publish must not block.
type Publisher interface {
	Publish(e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// admin token is checked before the upgrade
		return true
	},
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Event
	userID int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run fans events out to every client until ctx ends
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			dashboardClients.Inc()
			client.send <- Event{Type: EventConnected, At: time.Now().UTC()}
			log.Debug().Int64("user_id", client.userID).Msg("Moderation feed client connected")

		case client := <-h.unregister:
			h.drop(client)

		case event := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// slow consumer
					h.drop(client)
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	dashboardClients.Dec()
	log.Debug().Int64("user_id", client.userID).Msg("Moderation feed client disconnected")
}

// Publish queues e for broadcast, dropping it when the hub is saturated
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case h.broadcast <- e:
	default:
		log.Warn().Str("type", e.Type).Msg("Moderation feed saturated, event dropped")
	}
}

// ServeWS upgrades an authenticated admin request
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		userID: actor.UserID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the peer going away; the feed is one-way
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
