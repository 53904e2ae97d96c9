package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"callroom/client"
	"callroom/cmd"
	"callroom/config"
	"callroom/metric"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() config.Config {
	return config.Config{
		Client: client.Config{URL: client.DefaultURL, RequestTimeout: client.DefaultRequestTimeout},
		Metrics: metric.Config{
			Port: metric.DefaultMetricsPort,
			Path: metric.DefaultMetricsPath,
		},
		LogLevel: config.DefaultLogLevel,
	}
}

// parse parses the command-line arguments and returns the configuration.
// It returns an error if the arguments are invalid.
func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(*config.Config)
		wantErr bool
	}{
		{
			name: "given no args when parsed then return default config",
			args: []string{},
			want: func(*config.Config) {},
		},
		{
			name: "given server and timeout when parsed then return config",
			args: []string{"--server=wss://rooms.example.com/room", "--timeout=2s"},
			want: func(c *config.Config) {
				c.Client.URL = "wss://rooms.example.com/room"
				c.Client.RequestTimeout = 2 * time.Second
			},
		},
		{
			name: "given room and user when parsed then return config",
			args: []string{"--room", "room42", "--user", "alice"},
			want: func(c *config.Config) {
				c.Room = "room42"
				c.User = "alice"
			},
		},
		{
			name: "given metrics flags when parsed then return config with metrics",
			args: []string{"--metrics", "--metrics-port=9191", "--metrics-path=/m"},
			want: func(c *config.Config) {
				c.Metrics = metric.Config{Enabled: true, Port: 9191, Path: "/m"}
			},
		},
		{
			name: "given log level when parsed then return config",
			args: []string{"--log-level=debug"},
			want: func(c *config.Config) { c.LogLevel = "debug" },
		},
		{
			name:    "given extra args when parsed then return error",
			args:    []string{"--room=room42", "extra"},
			wantErr: true,
		},
		{
			name:    "given unknown flag when parsed then return error",
			args:    []string{"--extra"},
			wantErr: true,
		},
		{
			name:    "given timeout flag without value when parsed then return error",
			args:    []string{"--timeout"},
			wantErr: true,
		},
		{
			name:    "given invalid port value format when parsed then return error",
			args:    []string{"--metrics-port=abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			got, err := cmd.Parse(&output, tt.args)
			if tt.wantErr {
				assert.Errorf(t, err, "parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			want := defaults()
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "callroom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("room: room42\nuser: alice\n"), 0o600))

	t.Run("given a config file when parsed then its values are used", func(t *testing.T) {
		got, err := cmd.Parse(&bytes.Buffer{}, []string{"--config", file})
		require.NoError(t, err)
		assert.Equal(t, "room42", got.Room)
		assert.Equal(t, "alice", got.User)
	})

	t.Run("given a config file and a flag when parsed then the flag wins", func(t *testing.T) {
		got, err := cmd.Parse(&bytes.Buffer{}, []string{"--config", file, "--user", "bob"})
		require.NoError(t, err)
		assert.Equal(t, "room42", got.Room)
		assert.Equal(t, "bob", got.User)
	})
}

// TestSetupConfig tests the SetupConfig function, including handling errors from parse and Config.Validate.
func TestSetupConfig(t *testing.T) {
	tests := []struct {
		name                string
		args                []string
		expectParseError    bool
		expectValidateError bool
	}{
		{
			name: "given no args when setup config then return default config",
			args: []string{},
		},
		{
			name: "given room and user when setup config then return valid config",
			args: []string{"--room=room42", "--user=alice"},
		},
		{
			name:                "given room without user when setup config then return error",
			args:                []string{"--room=room42"},
			expectValidateError: true,
		},
		{
			name:                "given http server url when setup config then return error",
			args:                []string{"--server=http://localhost:8443/room"},
			expectValidateError: true,
		},
		{
			name:                "given zero timeout when setup config then return error",
			args:                []string{"--timeout=0s"},
			expectValidateError: true,
		},
		{
			name:                "given metrics on invalid port when setup config then return error",
			args:                []string{"--metrics", "--metrics-port=70000"},
			expectValidateError: true,
		},
		{
			name:                "given invalid port on disabled metrics when setup config then return valid config",
			args:                []string{"--metrics-port=70000"},
			expectValidateError: false,
		},
		{
			name:                "given unknown log level when setup config then return error",
			args:                []string{"--log-level=loud"},
			expectValidateError: true,
		},
		{
			name:             "given invalid flag format when setup config then return error",
			args:             []string{"--extra"},
			expectParseError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			_, err := cmd.SetupConfig(&output, tt.args)
			if tt.expectParseError || tt.expectValidateError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var output bytes.Buffer
	cmd.SetupLogger(&output, "warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	cmd.SetupLogger(&output, "loud")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
