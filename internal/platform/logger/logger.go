package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. Services receive it
// through options so tests can swap in a discard handler.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
