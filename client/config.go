package client

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	// DefaultURL is the room server endpoint used when none is configured.
	DefaultURL = "ws://localhost:8443/room"

	// DefaultRequestTimeout bounds each request to the room server.
	DefaultRequestTimeout = 10 * time.Second
)

// Below is the Error message for the client configuration.
var (
	ErrInvalidURL     = errors.New("invalid server url")
	ErrInvalidTimeout = errors.New("invalid request timeout")
)

// Config is the configuration of a room session.
type Config struct {
	URL            string
	RequestTimeout time.Duration
}

// Validate checks that the URL is a websocket URL and the timeout is positive.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%q: %w", c.URL, ErrInvalidURL)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("scheme must be ws or wss, given %q: %w", u.Scheme, ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host: %w", c.URL, ErrInvalidURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("must be positive, given %s: %w", c.RequestTimeout, ErrInvalidTimeout)
	}
	return nil
}
