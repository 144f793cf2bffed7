package observability

import (
	"github.com/danmuck/boltwire/internal/logging"
	"github.com/rs/zerolog"
)

// InitLogger configures the process logger once and returns a child tagged
// with the application name.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	return logging.Component(app).With().Str("app", app).Logger()
}
