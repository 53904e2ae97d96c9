package rpc

// Client methods
const (
	JoinRoom    = "joinRoom"
	LeaveRoom   = "leaveRoom"
	SendMessage = "sendMessage"
)

// Server notifications
const (
	ParticipantJoined      = "participantJoined"
	ParticipantLeft        = "participantLeft"
	ParticipantEvicted     = "participantEvicted"
	ParticipantPublished   = "participantPublished"
	ParticipantUnpublished = "participantUnpublished"
	MessageReceived        = "sendMessage"
	MediaError             = "mediaError"
)

// JoinParams is the payload of joinRoom.
type JoinParams struct {
	Room string `json:"room"`
	User string `json:"user"`
}

// JoinResult is the result of joinRoom.
type JoinResult struct {
	Value []Peer `json:"value"`
}

// Peer is a participant already in the room.
type Peer struct {
	ID      string   `json:"id"`
	Streams []Stream `json:"streams,omitempty"`
}

// StreamIDs returns the ids of the peer's streams.
func (p Peer) StreamIDs() []string {
	ids := make([]string, 0, len(p.Streams))
	for _, s := range p.Streams {
		ids = append(ids, s.ID)
	}
	return ids
}

// Stream is a media stream published by a peer.
type Stream struct {
	ID string `json:"id"`
}

// MessageParams is the payload of sendMessage, both as a request and as a
// notification.
type MessageParams struct {
	User    string `json:"userMessage"`
	Room    string `json:"roomMessage"`
	Message string `json:"message"`
}

// ParticipantParams is the payload of participant notifications.
type ParticipantParams struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Streams []Stream `json:"streams,omitempty"`
}

// Participant returns the id of the participant the notification is about.
// participantLeft and participantEvicted carry it under "name".
func (p ParticipantParams) Participant() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

// StreamIDs returns the ids of the announced streams.
func (p ParticipantParams) StreamIDs() []string {
	return Peer{ID: p.ID, Streams: p.Streams}.StreamIDs()
}
