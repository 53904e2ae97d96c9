// Package socket carries JSON messages between the room client and the room
// server.
package socket

// Socket is a message oriented, full duplex connection. WriteJSON may be
// called concurrently; ReadJSON is called from one reader only.
//
//go:generate mockgen -destination=mock_socket.go -package=socket . Socket
type Socket interface {
	Close() error
	WriteJSON(data any) error
	ReadJSON(v any) error
}
