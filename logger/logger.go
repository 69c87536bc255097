package logger

import (
	"log/slog"
	"os"
)

// InitLogger installs the global JSON logger writing to stdout.
// LOG_LEVEL selects the minimum level, defaulting to info.
func InitLogger() {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func init() {
	InitLogger()
}
