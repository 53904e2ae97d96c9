// Package rpc defines the JSON-RPC 2.0 messages exchanged with the room server.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version sent with every request.
const Version = "2.0"

// Request is a client to server call.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// NewRequest builds a request with the protocol version set.
func NewRequest(id int, method string, params any) Request {
	return Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// Message is any frame received from the server. A frame with an ID is a
// response, a frame with a method and no ID is a notification.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// IsResponse reports whether the message answers a request.
func (m Message) IsResponse() bool {
	return m.ID != nil
}

// Notification returns the message as a server notification.
func (m Message) Notification() Notification {
	return Notification{
		Method: m.Method,
		Params: m.Params,
	}
}

// Response is the result of a request.
type Response struct {
	Result json.RawMessage
	Error  *Error
}

// Notification is a server initiated event.
type Notification struct {
	Method string
	Params json.RawMessage
}

// Decode unmarshals the notification params into v.
func (n Notification) Decode(v any) error {
	if err := json.Unmarshal(n.Params, v); err != nil {
		return fmt.Errorf("failed to decode %s params: %w", n.Method, err)
	}
	return nil
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
