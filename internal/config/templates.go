package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Template renders a starter config for kind. "default" mirrors Default;
// "dev" turns on debug logging and a short write timeout.
func Template(kind string) (string, error) {
	var file fileConfig
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "default":
		file = toFile(Default())
	case "dev":
		cfg := Default()
		cfg.Server.Addr = "127.0.0.1:7475"
		file = toFile(cfg)
		file.Protocol.WriteTimeout = "2s"
		file.Log.Level = "debug"
		file.Log.NoColor = false
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
	data, err := toml.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", kind, err)
	}
	return string(data), nil
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

func toFile(cfg Config) fileConfig {
	return fileConfig{
		Server: fileServer{
			Addr:        cfg.Server.Addr,
			CorsOrigins: append([]string(nil), cfg.Server.CorsOrigins...),
			AuthToken:   cfg.Server.AuthToken,
		},
		Protocol: fileProtocol{
			Version:         cfg.Protocol.Version.String(),
			MaxChunkSize:    cfg.Protocol.MaxChunkSize,
			MaxMessageBytes: cfg.Protocol.MaxMessageBytes,
			WriteTimeout:    cfg.Protocol.WriteTimeout.String(),
		},
		Log: fileLog{
			Level:     cfg.Log.Level.String(),
			Timestamp: cfg.Log.Timestamp,
			NoColor:   cfg.Log.NoColor,
		},
	}
}
