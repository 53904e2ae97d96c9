// Package participant keeps track of the remote participants of a call.
package participant

import (
	"errors"
	"time"
)

var (
	// ErrParticipantAlreadyExists is returned when the participant already exists.
	ErrParticipantAlreadyExists = errors.New("participant already exists")

	// ErrParticipantNotFound is returned when the participant is not found.
	ErrParticipantNotFound = errors.New("participant not found")
)

// Participant is a remote user of the call.
type Participant struct {
	ID       string
	Streams  []string
	JoinedAt time.Time
}

// DeepCopy creates a deep copy of the given Participant.
func (p *Participant) DeepCopy() *Participant {
	streams := make([]string, len(p.Streams))
	copy(streams, p.Streams)
	return &Participant{
		ID:       p.ID,
		Streams:  streams,
		JoinedAt: p.JoinedAt,
	}
}

// Publishing reports whether the participant sends any stream.
func (p *Participant) Publishing() bool {
	return len(p.Streams) > 0
}
