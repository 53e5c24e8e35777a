package badger

import (
	"strings"

	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger sets the subsystem logger for the badger store. Badger's own
// messages are routed through it as well.
func UseLogger(logger slog.Logger) {
	log = logger
}

// badgerLogger adapts the subsystem logger to badger.Logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	log.Errorf(trimNewline(format), args...)
}

func (badgerLogger) Warningf(format string, args ...any) {
	log.Warnf(trimNewline(format), args...)
}

func (badgerLogger) Infof(format string, args ...any) {
	log.Debugf(trimNewline(format), args...)
}

func (badgerLogger) Debugf(format string, args ...any) {
	log.Tracef(trimNewline(format), args...)
}

// badger terminates its formats with a newline, slog adds its own.
func trimNewline(format string) string {
	return strings.TrimSuffix(format, "\n")
}
