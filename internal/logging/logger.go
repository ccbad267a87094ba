package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON slog handler on stdout as the process-wide default.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
