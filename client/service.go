package client

import "sync"

// Service holds the session of the page and the name of its room.
type Service struct {
	mu     sync.RWMutex
	room   string
	client *Client
}

// NewService creates a Service with no session.
func NewService() *Service {
	return &Service{}
}

// Bind makes c the current session for room.
func (s *Service) Bind(room string, c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
	s.client = c
}

// RoomName returns the room of the current session, empty when unbound.
func (s *Service) RoomName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

// Current returns the current session, nil when unbound.
func (s *Service) Current() *Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Reset unbinds the session without closing it.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = ""
	s.client = nil
}
