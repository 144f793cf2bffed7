package session

import (
	"fmt"
	"time"

	"github.com/danmuck/boltwire/internal/protocol/frame"
	"github.com/danmuck/boltwire/internal/protocol/schema"
)

// Config defines writer defaults.
type Config struct {
	Version      schema.Version
	Limits       frame.Limits
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Version:      schema.Version{Major: 5, Minor: 4},
		Limits:       frame.DefaultLimits(),
		WriteTimeout: 15 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Version.Major == 0 {
		return fmt.Errorf("session config missing protocol version")
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("session config limits: %w", err)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("session config write_timeout must not be negative")
	}
	return nil
}
