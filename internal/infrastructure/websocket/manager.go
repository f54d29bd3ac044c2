package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"civicvoice/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one live subscription. Each client owns a snapshot listener
// that stops when the client goes away.
type Client struct {
	ID     string
	UserID string
	Topic  string
	Conn   *websocket.Conn
	Send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
}

func NewClient(conn *websocket.Conn, userID, topic string, cancel context.CancelFunc) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Topic:  topic,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Push queues a frame. A slow reader loses frames rather than blocking the
// listener; every frame carries the full result set so the next one
// catches it up.
func (c *Client) Push(msgType string, data interface{}) {
	frame, err := NewMessage(msgType, data)
	if err != nil {
		logger.Error("websocket: failed to encode %s frame: %v", msgType, err)
		return
	}

	select {
	case <-c.done:
	case c.Send <- frame:
	default:
		logger.Warn("websocket: dropping %s frame for client %s", msgType, c.ID)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.cancel != nil {
			c.cancel()
		}
	})
}

// Manager tracks active subscriptions.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	stopped    chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Debug("websocket: client %s subscribed to %s", client.ID, client.Topic)

			case client := <-m.Unregister:
				m.mutex.Lock()
				delete(m.clients, client.ID)
				m.mutex.Unlock()
				client.close()
				logger.Debug("websocket: client %s left %s", client.ID, client.Topic)

			case <-ctx.Done():
				close(m.stopped)
				m.mutex.Lock()
				for id, client := range m.clients {
					client.close()
					delete(m.clients, id)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

// Add registers c. It reports false, and closes c, when the manager has
// already stopped.
func (m *Manager) Add(c *Client) bool {
	select {
	case m.Register <- c:
		return true
	case <-m.stopped:
		c.close()
		return false
	}
}

// Remove unregisters c. It is safe to call more than once and after the
// manager has stopped.
func (m *Manager) Remove(c *Client) {
	select {
	case m.Unregister <- c:
	case <-m.stopped:
		c.close()
	}
}

// Count returns the number of subscribers on topic, or on all topics when
// topic is empty.
func (m *Manager) Count(topic string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if topic == "" {
		return len(m.clients)
	}
	n := 0
	for _, c := range m.clients {
		if c.Topic == topic {
			n++
		}
	}
	return n
}

// ReadPump only services control frames; subscriptions are read-only.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket: client %s: %v", c.ID, err)
			}
			return
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
		case frame := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Warn("websocket: write to %s failed: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
