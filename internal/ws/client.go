package ws

import (
	"context"
	"time"

	"telegram_casino/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	opTimeout      = 5 * time.Second
)

// Client - одно websocket-соединение игрока
type Client struct {
	UserID  int64
	Conn    *websocket.Conn
	Send    chan []byte
	Session *Session
}

func NewClient(userID int64, conn *websocket.Conn, session *Session) *Client {
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		Session: session,
	}
}

// Run обслуживает соединение до его закрытия
func (c *Client) Run() {
	go c.writePump()
	c.Send <- []byte(`{"type":"ready"}`)
	c.readPump()
}

// read
func (c *Client) readPump() {
	// Send закрывается только здесь: readPump - единственный писатель
	defer close(c.Send)

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read failed", "user_id", c.UserID, "error", err)
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		reply := c.Session.Handle(ctx, c.UserID, msg)
		cancel()

		select {
		case c.Send <- reply:
		default:
			logger.Warn("ws send buffer full, dropping client", "user_id", c.UserID)
			return
		}
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write failed", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
