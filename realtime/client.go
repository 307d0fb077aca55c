package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// InboundHandler receives every well-formed frame read from a client.
type InboundHandler func(ctx context.Context, c *Client, event string, data gjson.Result)

// Client is a websocket connection owned by one authenticated user. Frames are
// written by a single goroutine in the order they were enqueued.
type Client struct {
	id     string
	userID string
	role   string

	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	log       *logrus.Entry
}

func NewClient(conn *websocket.Conn, userID, role string, sendBuffer int) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		role:   role,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		log: utils.InfoLogger.WithFields(logrus.Fields{
			"conn_id": id,
			"user_id": userID,
		}),
	}
}

func (c *Client) ID() string     { return c.id }
func (c *Client) UserID() string { return c.userID }
func (c *Client) Role() string   { return c.role }

// Enqueue never blocks. A full buffer drops the frame.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.log.Warn("Send buffer full, dropping frame")
		return false
	}
}

// SendEvent queues an event for this connection only.
func (c *Client) SendEvent(event string, data interface{}) bool {
	frame, err := encode(event, data)
	if err != nil {
		c.log.Errorf("Error marshaling %s event: %v", event, err)
		return false
	}
	return c.Enqueue(frame)
}

// Run registers the client with hub, serves it until the connection drops or
// ctx ends, then unregisters it.
func (c *Client) Run(ctx context.Context, hub *Hub, handle InboundHandler) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub.Register(c.userID, c)
	defer hub.Unregister(c)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump(ctx)
	}()

	c.readPump(ctx, handle)
	c.close()
	wg.Wait()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump(ctx context.Context, handle InboundHandler) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warnf("Read error: %v", err)
			}
			return
		}

		if !gjson.ValidBytes(raw) {
			c.SendEvent(EventError, map[string]string{"code": "validation", "message": "frame is not valid JSON"})
			continue
		}
		event := gjson.GetBytes(raw, "event").String()
		if event == "" {
			c.SendEvent(EventError, map[string]string{"code": "validation", "message": "frame has no event"})
			continue
		}
		handle(ctx, c, event, gjson.GetBytes(raw, "data"))
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Warnf("Write error: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}
