package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs a JSON slog handler as the process default and
// returns it. Unknown levels fall back to info.
func SetupLogger(service string, level string) *slog.Logger {
	return setupLogger(os.Stdout, service, level)
}

func setupLogger(w io.Writer, service string, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	logger := slog.New(handler)
	if service != "" {
		logger = logger.With("service", service)
	}
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
