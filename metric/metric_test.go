package metric_test

import (
	"errors"
	"testing"

	"callroom/metric"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := metric.New(metric.Config{Port: metric.DefaultMetricsPort, Path: metric.DefaultMetricsPath})

	m.IncrementWebSocketConnections()
	m.IncrementWebSocketConnections()
	m.DecrementWebSocketConnections()
	m.SetParticipants(4)
	m.SetFullscreen(true)
	m.ObserveRequest("joinRoom", nil)
	m.ObserveRequest("joinRoom", errors.New("boom"))
	m.ObserveRequest("leaveRoom", nil)

	count, err := testutil.GatherAndCount(m.Registry(),
		"callroom_websocket_connections",
		"callroom_participants",
		"callroom_fullscreen",
		"callroom_rpc_requests_total",
	)
	assert.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestNilMetrics(t *testing.T) {
	var m *metric.Metrics
	assert.NotPanics(t, func() {
		m.IncrementWebSocketConnections()
		m.DecrementWebSocketConnections()
		m.SetParticipants(1)
		m.SetFullscreen(false)
		m.ObserveRequest("leaveRoom", nil)
		assert.NoError(t, m.Stop())
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  metric.Config
		wantErr bool
	}{
		{name: "given disabled metrics when validated then any port is accepted", config: metric.Config{Port: -1}},
		{name: "given defaults when validated then no error", config: metric.Config{Enabled: true, Port: metric.DefaultMetricsPort, Path: metric.DefaultMetricsPath}},
		{name: "given port out of range when validated then error", config: metric.Config{Enabled: true, Port: 70000, Path: "/metrics"}, wantErr: true},
		{name: "given relative path when validated then error", config: metric.Config{Enabled: true, Port: 9090, Path: "metrics"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, metric.ErrInvalidMetrics)
				return
			}
			assert.NoError(t, err)
		})
	}
}
