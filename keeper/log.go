package keeper

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the subsystem logger for the keeper.
func UseLogger(logger slog.Logger) {
	log = logger
}
