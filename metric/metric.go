// Package metric provides Prometheus metrics collection and monitoring.
package metric

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/cpu"
)

const systemInterval = 5 * time.Second

// Metrics contains the Prometheus metrics server and registered custom metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpServer           *http.Server
	config               Config
	registry             *prometheus.Registry
	webSocketConnections prometheus.Gauge
	participants         prometheus.Gauge
	fullscreen           prometheus.Gauge
	cpuUsage             prometheus.Gauge
	memoryUsage          prometheus.Gauge
	requests             *prometheus.CounterVec
}

// New creates a new Metrics instance with the specified configuration and
// registers its collectors on a dedicated registry.
func New(config Config) *Metrics {
	m := &Metrics{
		config:   config,
		registry: prometheus.NewRegistry(),
		webSocketConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callroom_websocket_connections",
			Help: "Current number of open room server connections.",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callroom_participants",
			Help: "Current number of tracked remote participants.",
		}),
		fullscreen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callroom_fullscreen",
			Help: "1 while the display is in fullscreen mode.",
		}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callroom_cpu_usage_percentage",
			Help: "CPU usage percentage.",
		}),
		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callroom_memory_usage_bytes",
			Help: "Current memory usage in bytes.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "callroom_rpc_requests_total",
			Help: "Room server requests by method and outcome.",
		}, []string{"method", "outcome"}),
	}
	m.registry.MustRegister(
		m.webSocketConnections,
		m.participants,
		m.fullscreen,
		m.cpuUsage,
		m.memoryUsage,
		m.requests,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Start initializes and starts the metrics HTTP server.
func (m *Metrics) Start() {
	mux := http.NewServeMux()
	mux.Handle(m.config.Path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", m.config.Port),
		ReadHeaderTimeout: 2 * time.Second,
		Handler:           mux,
	}

	go func() {
		log.Info().Str("module", "metric").Int("port", m.config.Port).Str("path", m.config.Path).Msg("starting metrics server")
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Str("module", "metric").Err(err).Msg("metrics server failed")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (m *Metrics) Stop() error {
	if m == nil || m.httpServer == nil {
		return nil
	}
	log.Info().Str("module", "metric").Int("port", m.config.Port).Msg("stopping metrics server")
	return m.httpServer.Close()
}

// UpdateSystemMetrics collects CPU and memory usage until ctx is done.
func (m *Metrics) UpdateSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(systemInterval)
	defer ticker.Stop()
	for {
		m.collectSystem()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Metrics) collectSystem() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.memoryUsage.Set(float64(memStats.Alloc))

	percent, err := cpu.Percent(0, false)
	if err != nil || len(percent) == 0 {
		return
	}
	m.cpuUsage.Set(percent[0])
}

// IncrementWebSocketConnections increments the WebSocket connection count.
func (m *Metrics) IncrementWebSocketConnections() {
	if m == nil {
		return
	}
	m.webSocketConnections.Inc()
}

// DecrementWebSocketConnections decrements the WebSocket connection count.
func (m *Metrics) DecrementWebSocketConnections() {
	if m == nil {
		return
	}
	m.webSocketConnections.Dec()
}

// SetParticipants records the number of tracked participants.
func (m *Metrics) SetParticipants(n int) {
	if m == nil {
		return
	}
	m.participants.Set(float64(n))
}

// SetFullscreen records the display mode.
func (m *Metrics) SetFullscreen(enabled bool) {
	if m == nil {
		return
	}
	if enabled {
		m.fullscreen.Set(1)
		return
	}
	m.fullscreen.Set(0)
}

// ObserveRequest counts a finished request. A nil err counts as "ok".
func (m *Metrics) ObserveRequest(method string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(method, outcome).Inc()
}
