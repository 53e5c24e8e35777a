package sqlite

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the subsystem logger for the SQLite store.
func UseLogger(logger slog.Logger) {
	log = logger
}
