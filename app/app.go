// Package app runs the terminal room application. A single event loop reads
// commands, applies server notifications and follows navigation, so page
// state is only touched from one goroutine.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"callroom/client"
	"callroom/config"
	"callroom/controller"
	"callroom/display"
	"callroom/host"
	"callroom/metric"
	"callroom/navigation"
	"callroom/participant"
	"callroom/types/rpc"

	"github.com/mattn/go-shellwords"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Option configures an App.
type Option func(*App)

// WithScreen makes fullscreen mode draw on screens built by f.
func WithScreen(f display.ScreenFunc) Option {
	return func(a *App) {
		a.screen = f
	}
}

// App is the room application.
type App struct {
	conf   config.Config
	in     io.Reader
	out    io.Writer
	screen display.ScreenFunc

	metric   *metric.Metrics
	service  *client.Service
	registry *participant.Registry
	display  *display.Fullscreen
	router   *navigation.Router
	host     *host.Host

	openPeer      func(*client.Client) (*webrtc.PeerConnection, error)
	ctrl          *controller.Controller
	notifications <-chan rpc.Notification
}

// New creates an App reading commands from in and writing to out.
func New(conf config.Config, in io.Reader, out io.Writer, opts ...Option) *App {
	a := &App{
		conf:    conf,
		in:      in,
		out:     out,
		service: client.NewService(),
		router:  navigation.New(navigation.LoginLocation),
		host:    host.New(),
		metric:  metric.New(conf.Metrics),

		openPeer: (*client.Client).OpenPeer,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.registry = participant.New(a.metric)
	if a.screen != nil {
		a.display = display.New(a.screen, a.service.RoomName, a.metric)
	} else {
		a.display = display.NewTerminal(a.service.RoomName, a.metric)
	}
	return a
}

// Host returns the host whose unload ends the application.
func (a *App) Host() *host.Host {
	return a.host
}

// Run runs the event loop until the host unloads, the input ends or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.conf.Metrics.Enabled {
		a.metric.Start()
		defer func() {
			if err := a.metric.Stop(); err != nil {
				log.Warn().Str("module", "app").Err(err).Msg("failed to stop metrics server")
			}
		}()
		go a.metric.UpdateSystemMetrics(ctx)
	}

	locations := a.router.Subscribe()
	defer a.router.Unsubscribe(locations)
	lines := readLines(a.in)

	a.printf("callroom %s\n", a.router.Location())
	if a.conf.Room != "" {
		a.join(ctx, a.conf.Room, a.conf.User)
	} else {
		a.printf("join <room> [user] to enter a room\n")
	}

	for {
		select {
		case <-a.host.Done():
			a.display.Cancel()
			return nil
		case <-ctx.Done():
			a.host.Unload()
			a.display.Cancel()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				a.host.Unload()
				continue
			}
			a.handle(ctx, line)
		case location := <-locations:
			a.follow(location)
		case n, ok := <-a.notifications:
			if !ok {
				a.notifications = nil
				a.disconnected()
				continue
			}
			a.notify(n)
		}
	}
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Warn().Str("module", "app").Err(err).Msg("failed to read input")
		}
	}()
	return lines
}

func (a *App) handle(ctx context.Context, line string) {
	words, err := shellwords.Parse(line)
	if err != nil {
		a.printf("cannot parse %q: %v\n", line, err)
		return
	}
	if len(words) == 0 {
		return
	}

	name, args := words[0], words[1:]
	switch name {
	case "quit", "exit":
		a.host.Unload()
		return
	case "help":
		a.help()
		return
	}

	if a.router.Location() == navigation.CallLocation && a.ctrl != nil {
		a.callCommand(ctx, name, args)
		return
	}
	a.loginCommand(ctx, name, args)
}

func (a *App) loginCommand(ctx context.Context, name string, args []string) {
	switch name {
	case "join":
		if len(args) == 0 || len(args) > 2 {
			a.printf("usage: join <room> [user]\n")
			return
		}
		user := a.conf.User
		if len(args) == 2 {
			user = args[1]
		}
		if user == "" {
			a.printf("join: a user name is required\n")
			return
		}
		a.join(ctx, args[0], user)
	default:
		a.printf("unknown command %q, try help\n", name)
	}
}

func (a *App) callCommand(ctx context.Context, name string, args []string) {
	switch name {
	case "leave":
		a.ctrl.LeaveRoom()
	case "fullscreen", "fs":
		a.ctrl.ToggleFullscreen()
	case "who":
		a.who()
	case "room":
		a.printf("%s\n", a.ctrl.RoomName())
	case "say":
		if len(args) == 0 {
			a.printf("usage: say <text>\n")
			return
		}
		c := a.service.Current()
		if c == nil {
			a.printf("say: not in a room\n")
			return
		}
		if err := c.SendMessage(ctx, strings.Join(args, " ")); err != nil {
			a.printf("say: %v\n", err)
		}
	default:
		a.printf("unknown command %q, try help\n", name)
	}
}

func (a *App) help() {
	if a.router.Location() == navigation.CallLocation {
		a.printf("leave | fullscreen (fs) | who | say <text> | room | quit\n")
		return
	}
	a.printf("join <room> [user] | quit\n")
}

// join enters room on a new session and moves to the call page.
func (a *App) join(ctx context.Context, room, user string) {
	a.dispose()

	c, err := client.Dial(ctx, a.conf.Client, a.metric)
	if err != nil {
		log.Error().Str("module", "app").Str("room", room).Err(err).Msg("failed to connect")
		a.printf("join %s: %v\n", room, err)
		return
	}
	peers, err := c.JoinRoom(ctx, room, user)
	if err != nil {
		if closeErr := <-c.Close(); closeErr != nil {
			log.Warn().Str("module", "app").Err(closeErr).Msg("failed to close session")
		}
		a.printf("join %s: %v\n", room, err)
		return
	}

	if _, err := a.openPeer(c); err != nil {
		log.Warn().Str("module", "app").Str("room", room).Err(err).Msg("media unavailable")
	}

	a.registry.RemoveParticipants()
	for id, streams := range peers {
		if err := a.registry.AddParticipant(id, streams); err != nil {
			log.Warn().Str("module", "app").Str("participant", id).Err(err).Msg("failed to add participant")
		}
	}
	a.service.Bind(room, c)
	a.notifications = c.Notifications()
	a.ctrl = controller.New(roomSessions{service: a.service}, a.registry, a.display, a.router, a.host)
	a.router.Navigate(navigation.CallLocation)
	a.printf("joined %s as %s, %d already here\n", room, user, len(peers))
}

// dispose drops the controller of the call page.
func (a *App) dispose() {
	if a.ctrl == nil {
		return
	}
	a.ctrl.Close()
	a.ctrl = nil
	a.service.Reset()
	a.notifications = nil
}

func (a *App) follow(location string) {
	if location != a.router.Location() {
		return
	}
	switch location {
	case navigation.LoginLocation:
		if a.ctrl == nil {
			return
		}
		a.dispose()
		a.printf("left the room, join <room> [user] to enter another\n")
	case navigation.CallLocation:
		a.help()
	}
}

func (a *App) notify(n rpc.Notification) {
	switch n.Method {
	case rpc.ParticipantJoined:
		var p rpc.ParticipantParams
		if !a.decode(n, &p) {
			return
		}
		if err := a.registry.AddParticipant(p.Participant(), p.StreamIDs()); err != nil {
			log.Warn().Str("module", "app").Str("participant", p.Participant()).Err(err).Msg("failed to add participant")
			return
		}
		a.printf("* %s joined\n", p.Participant())
	case rpc.ParticipantLeft:
		var p rpc.ParticipantParams
		if !a.decode(n, &p) {
			return
		}
		if err := a.registry.RemoveParticipant(p.Participant()); err != nil {
			log.Warn().Str("module", "app").Str("participant", p.Participant()).Err(err).Msg("failed to remove participant")
			return
		}
		a.printf("* %s left\n", p.Participant())
	case rpc.ParticipantEvicted:
		a.printf("* evicted from %s\n", a.service.RoomName())
		if a.ctrl != nil {
			a.ctrl.LeaveRoom()
		}
	case rpc.ParticipantPublished, rpc.ParticipantUnpublished:
		var p rpc.ParticipantParams
		if !a.decode(n, &p) {
			return
		}
		a.publish(p.Participant(), p.StreamIDs())
	case rpc.MessageReceived:
		var m rpc.MessageParams
		if !a.decode(n, &m) {
			return
		}
		a.printf("[%s] %s: %s\n", m.Room, m.User, m.Message)
	case rpc.MediaError:
		var e struct {
			Error string `json:"error"`
		}
		if !a.decode(n, &e) {
			return
		}
		log.Warn().Str("module", "app").Str("error", e.Error).Msg("media error")
		a.printf("media error: %s\n", e.Error)
	default:
		log.Debug().Str("module", "app").Str("method", n.Method).Msg("unhandled notification")
	}
}

func (a *App) publish(id string, streams []string) {
	err := a.registry.UpdateStreams(id, streams)
	if err == nil {
		return
	}
	if err = a.registry.AddParticipant(id, streams); err != nil {
		log.Warn().Str("module", "app").Str("participant", id).Err(err).Msg("failed to update streams")
	}
}

func (a *App) decode(n rpc.Notification, v any) bool {
	if err := n.Decode(v); err != nil {
		log.Warn().Str("module", "app").Str("method", n.Method).Err(err).Msg("malformed notification")
		return false
	}
	return true
}

// disconnected handles a session that ended without leaving.
func (a *App) disconnected() {
	select {
	case <-a.host.Done():
		return
	default:
	}
	if a.ctrl == nil || a.router.Location() != navigation.CallLocation {
		return
	}
	a.printf("connection to the room server lost\n")
	a.ctrl.LeaveRoom()
}

func (a *App) who() {
	participants, err := a.registry.Participants()
	if err != nil {
		a.printf("who: %v\n", err)
		return
	}
	if len(participants) == 0 {
		a.printf("nobody else is here\n")
		return
	}
	for _, p := range participants {
		if p.Publishing() {
			a.printf("%s (%s)\n", p.ID, strings.Join(p.Streams, ", "))
			continue
		}
		a.printf("%s\n", p.ID)
	}
}

func (a *App) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(a.out, format, args...); err != nil {
		log.Debug().Str("module", "app").Err(err).Msg("failed to write output")
	}
}
