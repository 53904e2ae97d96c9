// Package cmd parse args to configure application.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"callroom/app"
	"callroom/client"
	"callroom/config"
	"callroom/metric"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Run starts the application.
func Run() {
	conf, err := SetupConfig(os.Stderr, os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	SetupLogger(os.Stderr, conf.LogLevel)

	a := app.New(conf, os.Stdin, os.Stdout)
	a.Host().Watch(os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer a.Host().Stop()

	if err = a.Run(context.Background()); err != nil {
		log.Error().Str("module", "cmd").Err(err).Msg("application stopped")
		os.Exit(1)
	}
}

// SetupLogger configures the global logger.
func SetupLogger(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// SetupConfig sets up and returns the configuration.
func SetupConfig(w io.Writer, args []string) (config.Config, error) {
	conf, err := Parse(w, args)
	if err != nil {
		return conf, err
	}
	if err = conf.Validate(); err != nil {
		fmt.Fprintln(w, err)
		return conf, err
	}
	return conf, nil
}

// Parse parses the command line arguments.
func Parse(w io.Writer, args []string) (config.Config, error) {
	var conf config.Config
	v := config.NewViper()
	root := NewRootCommand(v, func(c config.Config) error {
		conf = c
		return nil
	})
	root.SetOut(w)
	root.SetErr(w)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return config.Config{}, fmt.Errorf("failed to parse args: %w", err)
	}
	return conf, nil
}

// NewRootCommand creates the root command. Its flags are bound into v and
// run receives the loaded configuration.
func NewRootCommand(v *viper.Viper, run func(config.Config) error) *cobra.Command {
	root := &cobra.Command{
		Use:          "callroom",
		Short:        "Join video call rooms from the terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			conf, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(conf)
		},
	}

	fs := root.Flags()
	fs.String("config", "", "config file path (yaml)")
	fs.String("server", client.DefaultURL, "room server websocket url")
	fs.Duration("timeout", client.DefaultRequestTimeout, "request timeout")
	fs.String("room", "", "room to join on start")
	fs.String("user", "", "user name")
	fs.Bool("metrics", false, "serve prometheus metrics")
	fs.Int("metrics-port", metric.DefaultMetricsPort, "metrics listening port")
	fs.String("metrics-path", metric.DefaultMetricsPath, "metrics path")
	fs.String("log-level", config.DefaultLogLevel, "log level")

	bindings := map[string]string{
		config.KeyConfigFile:     "config",
		config.KeyServerURL:      "server",
		config.KeyServerTimeout:  "timeout",
		config.KeyRoom:           "room",
		config.KeyUser:           "user",
		config.KeyMetricsEnabled: "metrics",
		config.KeyMetricsPort:    "metrics-port",
		config.KeyMetricsPath:    "metrics-path",
		config.KeyLogLevel:       "log-level",
	}
	for key, flag := range bindings {
		cobra.CheckErr(v.BindPFlag(key, fs.Lookup(flag)))
	}
	return root
}
