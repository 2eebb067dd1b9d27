package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger. Records logged with a context carrying an
// otel span get trace_id and span_id attached.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
