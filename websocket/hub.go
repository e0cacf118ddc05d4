// Package websocket fans interview events out to live listeners. Each
// interview's capability token is a topic; a client listens on one topic.
package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

type topicMessage struct {
	topic   string
	payload []byte
}

// Hub owns the client set. Only the Run goroutine touches topics.
type Hub struct {
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan topicMessage
	done       chan struct{}
}

type Client struct {
	ID       string
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Topic    string
	Listener string
}

func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan topicMessage, 256),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			clients, ok := h.topics[client.Topic]
			if !ok {
				clients = make(map[*Client]bool)
				h.topics[client.Topic] = clients
			}
			clients[client] = true
			slog.Info("Live client registered", "client_id", client.ID, "interview_url", client.Topic, "listener", client.Listener)

		case client := <-h.unregister:
			h.remove(client)
			slog.Info("Live client unregistered", "client_id", client.ID, "interview_url", client.Topic)

		case msg := <-h.broadcast:
			for client := range h.topics[msg.topic] {
				select {
				case client.Send <- msg.payload:
				default:
					slog.Warn("Dropping slow live client", "client_id", client.ID, "interview_url", client.Topic)
					h.remove(client)
				}
			}

		case <-h.done:
			for topic, clients := range h.topics {
				for client := range clients {
					close(client.Send)
				}
				delete(h.topics, topic)
			}
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.topics[client.Topic]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.topics, client.Topic)
	}
}

// Stop ends the Run loop and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues event for every client on topic. It never blocks; events
// are dropped when the queue is full.
func (h *Hub) Publish(topic string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal live event", "error", err, "interview_url", topic)
		return
	}
	select {
	case h.broadcast <- topicMessage{topic: topic, payload: payload}:
	default:
		slog.Warn("Live event queue full, dropping event", "interview_url", topic)
	}
}

// RegisterClient subscribes conn to topic on behalf of listener.
func (h *Hub) RegisterClient(conn *websocket.Conn, topic, listener string) *Client {
	client := &Client{
		ID:       uuid.New().String(),
		Hub:      h,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		Topic:    topic,
		Listener: listener,
	}

	select {
	case h.register <- client:
	case <-h.done:
		// Stopped hubs hand back a client whose WritePump exits at once
		close(client.Send)
	}
	return client
}

// ReadPump only services control frames; listeners never send data.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err, "client_id", c.ID)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
