package contract

import "github.com/decred/slog"

// log is the engine logger, silent until UseLogger is called.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by the engine.
func UseLogger(logger slog.Logger) {
	log = logger
}
