package participant

import (
	"fmt"
	"time"

	"callroom/metric"

	"github.com/hashicorp/go-memdb"
	"github.com/rs/zerolog/log"
)

// Registry is a memory-backed participant registry.
type Registry struct {
	db     *memdb.MemDB
	metric *metric.Metrics
}

// New creates an empty registry. m may be nil.
func New(m *metric.Metrics) *Registry {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		panic(err)
	}
	return &Registry{
		db:     db,
		metric: m,
	}
}

// AddParticipant adds a participant with the given streams.
func (r *Registry) AddParticipant(id string, streams []string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()
	existing, err := txn.First(tblParticipants, idxParticipantID, id)
	if err != nil {
		return fmt.Errorf("find participant by id: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%s: %w", id, ErrParticipantAlreadyExists)
	}

	info := (&Participant{ID: id, Streams: streams, JoinedAt: time.Now()}).DeepCopy()
	if err := txn.Insert(tblParticipants, info); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	r.commit(txn)
	return nil
}

// UpdateStreams replaces the streams of a participant.
func (r *Registry) UpdateStreams(id string, streams []string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblParticipants, idxParticipantID, id)
	if err != nil {
		return fmt.Errorf("find participant by id: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("%s: %w", id, ErrParticipantNotFound)
	}

	info := raw.(*Participant).DeepCopy()
	info.Streams = append([]string(nil), streams...)
	if err := txn.Insert(tblParticipants, info); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	r.commit(txn)
	return nil
}

// RemoveParticipant removes one participant.
func (r *Registry) RemoveParticipant(id string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblParticipants, idxParticipantID, id)
	if err != nil {
		return fmt.Errorf("find participant by id: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("%s: %w", id, ErrParticipantNotFound)
	}
	if err := txn.Delete(tblParticipants, raw); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	r.commit(txn)
	return nil
}

// RemoveParticipants clears the registry.
func (r *Registry) RemoveParticipants() {
	txn := r.db.Txn(true)
	defer txn.Abort()
	n, err := txn.DeleteAll(tblParticipants, idxParticipantID)
	if err != nil {
		log.Error().Str("module", "participant").Err(err).Msg("failed to remove participants")
		return
	}
	r.commit(txn)
	log.Debug().Str("module", "participant").Int("removed", n).Msg("participants removed")
}

// FindParticipant finds a participant by id.
func (r *Registry) FindParticipant(id string) (*Participant, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tblParticipants, idxParticipantID, id)
	if err != nil {
		return nil, fmt.Errorf("find participant by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrParticipantNotFound)
	}
	return raw.(*Participant).DeepCopy(), nil
}

// Participants returns every participant ordered by id.
func (r *Registry) Participants() ([]*Participant, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()
	return list(txn)
}

// Count returns the number of participants.
func (r *Registry) Count() int {
	participants, err := r.Participants()
	if err != nil {
		return 0
	}
	return len(participants)
}

func (r *Registry) commit(txn *memdb.Txn) {
	participants, err := list(txn)
	txn.Commit()
	if err == nil {
		r.metric.SetParticipants(len(participants))
	}
}

func list(txn *memdb.Txn) ([]*Participant, error) {
	iter, err := txn.Get(tblParticipants, idxParticipantID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	var participants []*Participant
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		participants = append(participants, raw.(*Participant).DeepCopy())
	}
	return participants, nil
}
