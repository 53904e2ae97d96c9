// Package controller coordinates the lifecycle of a call page: leaving the
// room, tearing the session down when the page is discarded and toggling
// fullscreen.
package controller

// Session is a live connection to a room.
//
// Both methods return a future that receives the outcome of the request.
// The controller never waits on it.
type Session interface {
	LeaveRoom() <-chan error
	Close() <-chan error
}

// SessionProvider exposes the current room and its session.
//
//go:generate mockgen -destination=mock_controller.go -package=controller . SessionProvider,Session,Registry,Display,Navigator,Host
type SessionProvider interface {
	RoomName() string
	Session() Session
}

// Registry tracks the participants visible in the call.
type Registry interface {
	RemoveParticipants()
}

// Display switches the whole viewport in and out of fullscreen.
type Display interface {
	IsEnabled() bool
	All()
	Cancel()
}

// Navigator redirects the page to another location.
type Navigator interface {
	Navigate(location string)
}

// Host delivers the unload event that precedes discarding the page.
type Host interface {
	OnUnload(fn func()) (deregister func())
}
