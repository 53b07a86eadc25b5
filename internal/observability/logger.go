package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/sdg2-indicator-service/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger creates the service logger from LOG_LEVEL and LOG_FORMAT and sets
// it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// NewCLILogger creates a text logger on w for one-shot commands, keeping
// stdout free for command output. The shared factory always writes to stdout,
// so the level names are mirrored here. Unknown levels mean warn rather than
// info so a CLI run stays quiet.
func NewCLILogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseCLILevel(level)}))
}

func parseCLILevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
