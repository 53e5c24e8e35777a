package bolt

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the subsystem logger for the bolt store.
func UseLogger(logger slog.Logger) {
	log = logger
}
