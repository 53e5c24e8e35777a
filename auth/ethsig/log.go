package ethsig

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the subsystem logger for signature checks.
func UseLogger(logger slog.Logger) {
	log = logger
}
