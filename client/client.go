// Package client contains the room session client. It speaks JSON-RPC 2.0
// over a websocket with the room server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"callroom/metric"
	"callroom/pkg/socket"
	"callroom/types/rpc"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// notificationBuffer is how many server notifications are queued before
// new ones are dropped.
const notificationBuffer = 64

var (
	// ErrClosed is returned for requests on a closed session.
	ErrClosed = errors.New("session closed")

	// ErrTimeout is returned when the server does not answer in time.
	ErrTimeout = errors.New("request timed out")

	// ErrNotJoined is returned when a request needs a joined room.
	ErrNotJoined = errors.New("not joined to a room")
)

// Client is a session with the room server.
type Client struct {
	id     string
	conf   Config
	socket socket.Socket
	metric *metric.Metrics

	mu      sync.Mutex
	nextID  int
	pending map[int]chan rpc.Response
	room    string
	user    string
	peers   []*webrtc.PeerConnection

	notifications chan rpc.Notification
	closeOnce     sync.Once
	closed        chan struct{}
}

// Dial connects to the room server. m may be nil.
func Dial(ctx context.Context, conf Config, m *metric.Metrics) (*Client, error) {
	ws, err := socket.Dial(ctx, conf.URL)
	if err != nil {
		return nil, err
	}
	return New(ws, conf, m), nil
}

// New creates a client over an established socket and starts reading from it.
func New(s socket.Socket, conf Config, m *metric.Metrics) *Client {
	if conf.RequestTimeout <= 0 {
		conf.RequestTimeout = DefaultRequestTimeout
	}
	c := &Client{
		id:            shortuuid.New(),
		conf:          conf,
		socket:        s,
		metric:        m,
		pending:       make(map[int]chan rpc.Response),
		notifications: make(chan rpc.Notification, notificationBuffer),
		closed:        make(chan struct{}),
	}
	m.IncrementWebSocketConnections()
	go c.readLoop()
	return c
}

// ID returns the local identifier of the session, used in logs.
func (c *Client) ID() string {
	return c.id
}

// Room returns the joined room, empty before JoinRoom succeeds.
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Notifications returns the server notifications. The channel is closed when
// the connection ends.
func (c *Client) Notifications() <-chan rpc.Notification {
	return c.notifications
}

// Done is closed once the session is closed.
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

// JoinRoom joins room as user and returns the peers already there with the
// ids of their streams.
func (c *Client) JoinRoom(ctx context.Context, room, user string) (map[string][]string, error) {
	raw, err := c.call(ctx, rpc.JoinRoom, rpc.JoinParams{Room: room, User: user})
	if err != nil {
		return nil, err
	}
	var result rpc.JoinResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", rpc.JoinRoom, err)
	}

	c.mu.Lock()
	c.room = room
	c.user = user
	c.mu.Unlock()

	peers := make(map[string][]string, len(result.Value))
	for _, peer := range result.Value {
		peers[peer.ID] = peer.StreamIDs()
	}
	log.Info().Str("module", "client").Str("session", c.id).Str("room", room).Str("user", user).Int("peers", len(peers)).Msg("joined room")
	return peers, nil
}

// SendMessage sends a chat message to the joined room.
func (c *Client) SendMessage(ctx context.Context, message string) error {
	c.mu.Lock()
	room, user := c.room, c.user
	c.mu.Unlock()
	if room == "" {
		return ErrNotJoined
	}
	_, err := c.call(ctx, rpc.SendMessage, rpc.MessageParams{User: user, Room: room, Message: message})
	return err
}

// LeaveRoom asks the server to remove the participant from the room and then
// closes the session. The request runs in the background; the returned
// channel receives its outcome once.
func (c *Client) LeaveRoom() <-chan error {
	result := make(chan error, 1)
	go func() {
		_, err := c.call(context.Background(), rpc.LeaveRoom, struct{}{})
		if err != nil && !errors.Is(err, ErrClosed) {
			log.Warn().Str("module", "client").Str("session", c.id).Err(err).Msg("leave request failed")
		}
		if closeErr := c.shutdown(); err == nil {
			err = closeErr
		}
		result <- err
	}()
	return result
}

// Close tears the session down immediately: attached peer connections and
// the websocket are closed before it returns. Closing a closed session does
// nothing and yields nil.
func (c *Client) Close() <-chan error {
	result := make(chan error, 1)
	result <- c.shutdown()
	return result
}

// AttachPeer ties a peer connection to the session so it is closed with it.
func (c *Client) AttachPeer(pc *webrtc.PeerConnection) {
	c.mu.Lock()
	select {
	case <-c.closed:
		c.mu.Unlock()
		if err := pc.Close(); err != nil {
			log.Warn().Str("module", "client").Str("session", c.id).Err(err).Msg("failed to close peer connection")
		}
		return
	default:
	}
	c.peers = append(c.peers, pc)
	c.mu.Unlock()
}

// OpenPeer creates the peer connection receiving the room's audio and video
// and attaches it to the session.
func (c *Client) OpenPeer() (*webrtc.PeerConnection, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}
	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo} {
		if _, err = pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			_ = pc.Close()
			return nil, fmt.Errorf("failed to add %s transceiver: %w", kind, err)
		}
	}
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Debug().Str("module", "client").Str("session", c.id).Str("state", state.String()).Msg("peer connection state changed")
	})
	c.AttachPeer(pc)
	return pc, nil
}

func (c *Client) shutdown() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.closed)
		peers := c.peers
		c.peers = nil
		c.mu.Unlock()

		for _, pc := range peers {
			if closeErr := pc.Close(); closeErr != nil {
				log.Warn().Str("module", "client").Str("session", c.id).Err(closeErr).Msg("failed to close peer connection")
			}
		}
		if closeErr := c.socket.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close socket: %w", closeErr)
		}
		c.metric.DecrementWebSocketConnections()
		log.Info().Str("module", "client").Str("session", c.id).Msg("session closed")
	})
	return err
}

// call sends a request and waits for its response.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	res, err := c.roundTrip(ctx, method, params)
	c.metric.ObserveRequest(method, err)
	return res, err
}

func (c *Client) roundTrip(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	select {
	case <-c.closed:
		c.mu.Unlock()
		return nil, ErrClosed
	default:
	}
	id := c.nextID
	c.nextID++
	response := make(chan rpc.Response, 1)
	c.pending[id] = response
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.socket.WriteJSON(rpc.NewRequest(id, method, params)); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	timer := time.NewTimer(c.conf.RequestTimeout)
	defer timer.Stop()
	select {
	case res := <-response:
		if res.Error != nil {
			return nil, res.Error
		}
		return res.Result, nil
	case <-c.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("%s: %w", method, ErrTimeout)
	}
}

// readLoop dispatches responses to their callers and queues notifications.
func (c *Client) readLoop() {
	defer close(c.notifications)
	for {
		var raw json.RawMessage
		if err := c.socket.ReadJSON(&raw); err != nil {
			if isDecodeError(err) {
				log.Warn().Str("module", "client").Str("session", c.id).Err(err).Msg("malformed frame skipped")
				continue
			}
			select {
			case <-c.closed:
			default:
				log.Warn().Str("module", "client").Str("session", c.id).Err(err).Msg("connection lost")
				_ = c.shutdown()
			}
			return
		}

		var msg rpc.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn().Str("module", "client").Str("session", c.id).Err(err).Msg("undecodable message skipped")
			continue
		}

		if msg.IsResponse() {
			c.mu.Lock()
			response, ok := c.pending[*msg.ID]
			c.mu.Unlock()
			if !ok {
				log.Debug().Str("module", "client").Str("session", c.id).Int("id", *msg.ID).Msg("response without request")
				continue
			}
			select {
			case response <- rpc.Response{Result: msg.Result, Error: msg.Error}:
			default:
				log.Debug().Str("module", "client").Str("session", c.id).Int("id", *msg.ID).Msg("duplicate response")
			}
			continue
		}

		select {
		case c.notifications <- msg.Notification():
		default:
			log.Warn().Str("module", "client").Str("session", c.id).Str("method", msg.Method).Msg("notification dropped")
		}
	}
}

// isDecodeError reports whether err comes from a frame that was read in full
// but is not valid JSON. The connection itself is still usable.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
