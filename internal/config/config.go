package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/boltwire/internal/logging"
	"github.com/danmuck/boltwire/internal/protocol/frame"
	"github.com/danmuck/boltwire/internal/protocol/schema"
	"github.com/danmuck/boltwire/internal/protocol/session"
	"github.com/rs/zerolog"
)

type Config struct {
	Server   ServerConfig
	Protocol ProtocolConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr        string
	CorsOrigins []string
	// AuthToken, when set, is required as a bearer token on /v1 routes.
	AuthToken   string
}

type ProtocolConfig struct {
	Version         schema.Version
	MaxChunkSize    int
	MaxMessageBytes int
	WriteTimeout    time.Duration
}

type LogConfig struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

func Default() Config {
	limits := frame.DefaultLimits()
	sess := session.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Addr:        ":7475",
			CorsOrigins: []string{"http://localhost:3000"},
		},
		Protocol: ProtocolConfig{
			Version:         sess.Version,
			MaxChunkSize:    limits.MaxChunkSize,
			MaxMessageBytes: limits.MaxMessageBytes,
			WriteTimeout:    sess.WriteTimeout,
		},
		Log: LogConfig{
			Level:     zerolog.InfoLevel,
			Timestamp: true,
		},
	}
}

// fileConfig is the on-disk shape; durations and versions stay strings
// until Load parses them.
type fileConfig struct {
	Server   fileServer   `toml:"server"`
	Protocol fileProtocol `toml:"protocol"`
	Log      fileLog      `toml:"log"`
}

type fileServer struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	AuthToken   string   `toml:"auth_token,omitempty"`
}

type fileProtocol struct {
	Version         string `toml:"version"`
	MaxChunkSize    int    `toml:"max_chunk_size"`
	MaxMessageBytes int    `toml:"max_message_bytes"`
	WriteTimeout    string `toml:"write_timeout"`
}

type fileLog struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

// Load reads path and applies every defined key on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config unknown key (%s): %s", path, undecoded[0])
	}

	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeList(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("server", "auth_token") {
		cfg.Server.AuthToken = strings.TrimSpace(raw.Server.AuthToken)
	}

	if meta.IsDefined("protocol", "version") {
		v, err := schema.ParseVersion(raw.Protocol.Version)
		if err != nil {
			return Config{}, fmt.Errorf("parse protocol.version: %w", err)
		}
		cfg.Protocol.Version = v
	}
	if meta.IsDefined("protocol", "max_chunk_size") {
		cfg.Protocol.MaxChunkSize = raw.Protocol.MaxChunkSize
	}
	if meta.IsDefined("protocol", "max_message_bytes") {
		cfg.Protocol.MaxMessageBytes = raw.Protocol.MaxMessageBytes
	}
	if meta.IsDefined("protocol", "write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Protocol.WriteTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse protocol.write_timeout: %w", err)
		}
		cfg.Protocol.WriteTimeout = d
	}

	if meta.IsDefined("log", "level") {
		level, ok := logging.ParseLevel(raw.Log.Level)
		if !ok {
			return Config{}, fmt.Errorf("parse log.level: unknown level %q", raw.Log.Level)
		}
		cfg.Log.Level = level
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if err := cfg.ProtocolSessionConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// ProtocolSessionConfig converts the protocol section for session writers.
func (c Config) ProtocolSessionConfig() session.Config {
	return session.Config{
		Version: c.Protocol.Version,
		Limits: frame.Limits{
			MaxChunkSize:    c.Protocol.MaxChunkSize,
			MaxMessageBytes: c.Protocol.MaxMessageBytes,
		},
		WriteTimeout: c.Protocol.WriteTimeout,
	}
}

// LoggingConfig overlays the log section on the runtime defaults.
func (c Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig(logging.ProfileRuntime)
	lc.Level = c.Log.Level
	lc.Timestamp = c.Log.Timestamp
	lc.NoColor = lc.NoColor || c.Log.NoColor
	return lc
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		v := strings.TrimSpace(item)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
