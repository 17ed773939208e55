package connection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketPath is the server's push endpoint.
const WebSocketPath = "/ws/game"

// WebSocketConfig holds configuration for the WebSocket push channel.
type WebSocketConfig struct {
	URL              string // scheme and host, e.g. ws://localhost:8000
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
}

// DefaultWebSocketConfig returns default WebSocket configuration.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		URL:              "ws://localhost:8000",
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   64 * 1024,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
}

// WebSocketDialer opens push channels over WebSocket.
type WebSocketDialer struct {
	config WebSocketConfig
	dialer *websocket.Dialer
}

func NewWebSocketDialer(config WebSocketConfig) *WebSocketDialer {
	return &WebSocketDialer{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
		},
	}
}

// URL returns the push endpoint for one player of one game.
func (d *WebSocketDialer) URL(gameID, playerID int) string {
	return fmt.Sprintf("%s%s?game_id=%d&player_id=%d",
		strings.TrimRight(d.config.URL, "/"), WebSocketPath, gameID, playerID)
}

func (d *WebSocketDialer) Dial(ctx context.Context, gameID, playerID int) (Channel, error) {
	url := d.URL(gameID, playerID)
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &wsChannel{conn: conn, config: d.config}
	if d.config.MaxMessageSize > 0 {
		conn.SetReadLimit(d.config.MaxMessageSize)
	}
	conn.SetPingHandler(func(appData string) error {
		c.extendDeadline()
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(d.config.WriteTimeout))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})
	c.extendDeadline()
	return c, nil
}

type wsChannel struct {
	conn      *websocket.Conn
	config    WebSocketConfig
	closeOnce sync.Once
}

func (c *wsChannel) ReadMessage(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.extendDeadline()
	return data, nil
}

func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.config.WriteTimeout))
		err = c.conn.Close()
	})
	return err
}

func (c *wsChannel) extendDeadline() {
	if c.config.ReadTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}
}
