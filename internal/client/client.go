package client

import (
	"context"
	"sync"
	"time"

	"ctchen222/tictactoe-grid/internal/api/service"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

const heartbeatInterval = 10 * time.Second

var tracer = otel.Tracer("client")

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client drives the session of one browser page. Messages are handled one
// at a time in arrival order, so a session is never mutated concurrently.
type Client struct {
	conn     Connection
	sessions service.SessionService

	writeMu   sync.Mutex
	SessionID string
}

// NewClient creates a client serving conn.
func NewClient(conn Connection, sessions service.SessionService) *Client {
	return &Client{
		conn:     conn,
		sessions: sessions,
	}
}

// heartbeat pings the browser until ctx is done.
func (c *Client) heartbeat(ctx context.Context, interval time.Duration) {
	pingTicker := time.NewTicker(interval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}
