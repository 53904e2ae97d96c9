package controller

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// LoginLocation is where the page goes after leaving a room.
const LoginLocation = "#/login"

// Controller handles the triggers of a call page. It keeps no session or
// participant state between calls; every handler asks its collaborators.
type Controller struct {
	roomName string

	provider  SessionProvider
	registry  Registry
	display   Display
	navigator Navigator

	closeOnce  sync.Once
	deregister func()
}

// New creates a Controller and registers its unload handler with the host.
// An empty room name is kept as is.
func New(p SessionProvider, r Registry, d Display, n Navigator, h Host) *Controller {
	c := &Controller{
		roomName:  p.RoomName(),
		provider:  p,
		registry:  r,
		display:   d,
		navigator: n,
	}
	c.deregister = h.OnUnload(c.OnUnload)
	return c
}

// RoomName returns the room name read at construction.
func (c *Controller) RoomName() string {
	return c.roomName
}

// LeaveRoom leaves the room, clears the participants and goes back to the
// login page. The leave request runs in the background and its outcome is
// ignored here: the user must always be able to leave, even if the server
// does not answer.
func (c *Controller) LeaveRoom() {
	c.bestEffort("leave room", func() {
		_ = c.provider.Session().LeaveRoom()
	})
	c.bestEffort("remove participants", c.registry.RemoveParticipants)
	c.navigator.Navigate(LoginLocation)
}

// OnUnload closes the session right away. The page is going away, so the
// registry and the location are left untouched.
func (c *Controller) OnUnload() {
	c.bestEffort("close session", func() {
		_ = c.provider.Session().Close()
	})
}

// ToggleFullscreen leaves fullscreen if it is on and enters it otherwise.
// The current mode is queried every time since it can change outside the
// controller.
func (c *Controller) ToggleFullscreen() {
	if c.display.IsEnabled() {
		c.display.Cancel()
		return
	}
	c.display.All()
}

// Close removes the unload handler from the host.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if c.deregister != nil {
			c.deregister()
		}
	})
}

// bestEffort runs fn and logs instead of propagating a panic, so the
// following steps of a teardown still run.
func (c *Controller) bestEffort(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("module", "controller").
				Str("room", c.roomName).
				Str("step", step).
				Interface("panic", r).
				Msg("step failed, continuing")
		}
	}()
	fn()
}
