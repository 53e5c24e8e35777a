package natsbus

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the subsystem logger for the event bus.
func UseLogger(logger slog.Logger) {
	log = logger
}
