package app

import (
	"callroom/client"
	"callroom/controller"
)

// roomSessions exposes the bound session of a client.Service to the
// controller.
type roomSessions struct {
	service *client.Service
}

func (r roomSessions) RoomName() string {
	return r.service.RoomName()
}

// Session returns the bound session, or a detached one once the service has
// been reset.
func (r roomSessions) Session() controller.Session {
	if c := r.service.Current(); c != nil {
		return c
	}
	return detached{}
}

// detached is a session that is already gone.
type detached struct{}

func (detached) LeaveRoom() <-chan error {
	return resolved(client.ErrClosed)
}

func (detached) Close() <-chan error {
	return resolved(nil)
}

func resolved(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	return ch
}
