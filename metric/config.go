package metric

import (
	"errors"
	"fmt"
	"strings"
)

// Config defines the configuration for the metrics server.
type Config struct {
	Enabled bool   // Whether the metrics server is started
	Port    int    // Port for metrics server
	Path    string // Path for metrics endpoint
}

// Default values for metrics configuration.
const (
	DefaultMetricsPort = 9090
	DefaultMetricsPath = "/metrics"
)

// ErrInvalidMetrics is returned by Validate for an unusable configuration.
var ErrInvalidMetrics = errors.New("invalid metrics config")

// Validate checks the port and path when metrics are enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, given %d: %w", c.Port, ErrInvalidMetrics)
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path must start with '/', given %q: %w", c.Path, ErrInvalidMetrics)
	}
	return nil
}
