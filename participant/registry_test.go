package participant_test

import (
	"testing"

	"callroom/metric"
	"callroom/participant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("given new participants when added then they are listed by id", func(t *testing.T) {
		r := participant.New(nil)
		require.NoError(t, r.AddParticipant("carol", nil))
		require.NoError(t, r.AddParticipant("alice", []string{"webcam"}))
		require.NoError(t, r.AddParticipant("bob", nil))

		participants, err := r.Participants()
		require.NoError(t, err)
		ids := make([]string, 0, len(participants))
		for _, p := range participants {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"alice", "bob", "carol"}, ids)
		assert.Equal(t, 3, r.Count())
	})

	t.Run("given an existing participant when added again then error", func(t *testing.T) {
		r := participant.New(nil)
		require.NoError(t, r.AddParticipant("alice", nil))
		assert.ErrorIs(t, r.AddParticipant("alice", nil), participant.ErrParticipantAlreadyExists)
	})

	t.Run("given a participant when streams are updated then the copy reflects them", func(t *testing.T) {
		r := participant.New(nil)
		require.NoError(t, r.AddParticipant("alice", nil))
		require.NoError(t, r.UpdateStreams("alice", []string{"webcam", "screen"}))

		p, err := r.FindParticipant("alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"webcam", "screen"}, p.Streams)
		assert.True(t, p.Publishing())

		p.Streams[0] = "changed"
		again, err := r.FindParticipant("alice")
		require.NoError(t, err)
		assert.Equal(t, "webcam", again.Streams[0])
	})

	t.Run("given unknown participants when updated, found or removed then not found", func(t *testing.T) {
		r := participant.New(nil)
		assert.ErrorIs(t, r.UpdateStreams("ghost", nil), participant.ErrParticipantNotFound)
		assert.ErrorIs(t, r.RemoveParticipant("ghost"), participant.ErrParticipantNotFound)
		_, err := r.FindParticipant("ghost")
		assert.ErrorIs(t, err, participant.ErrParticipantNotFound)
	})

	t.Run("given a participant when removed then it is gone", func(t *testing.T) {
		r := participant.New(nil)
		require.NoError(t, r.AddParticipant("alice", nil))
		require.NoError(t, r.AddParticipant("bob", nil))
		require.NoError(t, r.RemoveParticipant("alice"))
		assert.Equal(t, 1, r.Count())
	})
}

func TestRemoveParticipants(t *testing.T) {
	m := metric.New(metric.Config{})
	r := participant.New(m)

	assert.NotPanics(t, r.RemoveParticipants)
	assert.Equal(t, 0, r.Count())

	require.NoError(t, r.AddParticipant("alice", []string{"webcam"}))
	require.NoError(t, r.AddParticipant("bob", nil))
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, float64(2), gauge(t, m))

	r.RemoveParticipants()
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, float64(0), gauge(t, m))

	require.NoError(t, r.AddParticipant("alice", nil))
	assert.Equal(t, 1, r.Count())
}

func gauge(t *testing.T, m *metric.Metrics) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "callroom_participants" {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("participants gauge not found")
	return 0
}
