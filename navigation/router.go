// Package navigation holds the current location of the application and
// tells subscribers when it changes.
package navigation

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Locations of the application pages.
const (
	LoginLocation = "#/login"
	CallLocation  = "#/call"
)

const subscriptionBuffer = 8

// Router keeps the current location.
type Router struct {
	mu       sync.RWMutex
	location string
	subs     []chan string
}

// New creates a Router at location.
func New(location string) *Router {
	return &Router{
		location: location,
	}
}

// Navigate moves to location. The location is updated before Navigate
// returns; subscribers whose buffer is full miss the change.
func (r *Router) Navigate(location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.Debug().Str("module", "navigation").Str("from", r.location).Str("to", location).Msg("navigate")
	r.location = location
	for _, sub := range r.subs {
		select {
		case sub <- location:
		default:
			log.Warn().Str("module", "navigation").Str("to", location).Msg("subscriber missed a location change")
		}
	}
}

// Location returns the current location.
func (r *Router) Location() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

// Subscribe returns a channel receiving every later location change.
func (r *Router) Subscribe() <-chan string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub := make(chan string, subscriptionBuffer)
	r.subs = append(r.subs, sub)
	return sub
}

// Unsubscribe stops delivery to sub and closes it.
func (r *Router) Unsubscribe(sub <-chan string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s == sub {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			close(s)
			return
		}
	}
}
