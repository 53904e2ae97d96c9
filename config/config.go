// Package config holds the configuration of the room client.
package config

import (
	"fmt"
	"strings"

	"callroom/client"
	"callroom/metric"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Keys of the configuration values, shared by flags, environment and file.
const (
	KeyConfigFile     = "config"
	KeyServerURL      = "server.url"
	KeyServerTimeout  = "server.timeout"
	KeyRoom           = "room"
	KeyUser           = "user"
	KeyMetricsEnabled = "metrics.enabled"
	KeyMetricsPort    = "metrics.port"
	KeyMetricsPath    = "metrics.path"
	KeyLogLevel       = "log.level"
)

// EnvPrefix prefixes environment variables, e.g. CALLROOM_SERVER_URL.
const EnvPrefix = "CALLROOM"

// DefaultLogLevel is used when no level is configured.
const DefaultLogLevel = "info"

// Config contains the configuration of the application.
type Config struct {
	Client   client.Config
	Metrics  metric.Config
	Room     string
	User     string
	LogLevel string
}

// NewViper creates a viper instance with defaults and environment lookup.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServerURL, client.DefaultURL)
	v.SetDefault(KeyServerTimeout, client.DefaultRequestTimeout)
	v.SetDefault(KeyMetricsEnabled, false)
	v.SetDefault(KeyMetricsPort, metric.DefaultMetricsPort)
	v.SetDefault(KeyMetricsPath, metric.DefaultMetricsPath)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	return v
}

// Load reads the config file named by KeyConfigFile, if any, and returns the
// merged configuration.
func Load(v *viper.Viper) (Config, error) {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return Config{
		Client: client.Config{
			URL:            v.GetString(KeyServerURL),
			RequestTimeout: v.GetDuration(KeyServerTimeout),
		},
		Metrics: metric.Config{
			Enabled: v.GetBool(KeyMetricsEnabled),
			Port:    v.GetInt(KeyMetricsPort),
			Path:    v.GetString(KeyMetricsPath),
		},
		Room:     v.GetString(KeyRoom),
		User:     v.GetString(KeyUser),
		LogLevel: v.GetString(KeyLogLevel),
	}, nil
}

// Validate validates every section of the configuration.
func (c Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Room != "" && c.User == "" {
		return fmt.Errorf("a user is required to join %s on start", c.Room)
	}
	return nil
}
