package observability

import (
	"log/slog"
	"os"
)

// global JSON logger, stdout. The absorbed-failure paths (quota count,
// context fetch, history fetch, persist) all log through this so a store
// outage is visible server-side even though callers never see it.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// WithFields returns the shared logger with additional fields, typically a
// component tag set once at construction.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}
