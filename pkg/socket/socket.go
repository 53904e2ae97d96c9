// Package socket provides an interface for managing socket.
package socket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 5 * time.Second
	writeTimeout     = 5 * time.Second
)

// WebSocket wraps the gorilla/websocket connection. Writes are serialized,
// reads must come from a single goroutine.
type WebSocket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial opens a WebSocket connection to url.
func Dial(ctx context.Context, url string) (*WebSocket, error) {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return &WebSocket{
		conn: conn,
	}, nil
}

// Close sends a close frame and closes the WebSocket connection.
func (s *WebSocket) Close() error {
	s.mu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	s.mu.Unlock()
	return s.conn.Close()
}

// WriteJSON sends data as a JSON text message.
func (s *WebSocket) WriteJSON(data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(data)
}

// ReadJSON reads a JSON message from the WebSocket connection and unmarshals it into the provided variable.
func (s *WebSocket) ReadJSON(v any) error {
	return s.conn.ReadJSON(v)
}
