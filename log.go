package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"dao_gov/auth/ethsig"
	"dao_gov/config"
	"dao_gov/contract"
	"dao_gov/events/natsbus"
	"dao_gov/keeper"
	"dao_gov/store/badger"
	"dao_gov/store/bolt"
	"dao_gov/store/sqlite"
)

// logWriter sends log lines to stderr and, once it is set up, the rotator.
// stdout is left to command output.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator == nil {
		return len(p), nil
	}
	return logRotator.Write(p)
}

// One backend, one logger per subsystem. New subsystems go here and into
// subsystemLoggers.
var (
	backendLog = slog.NewBackend(logWriter{})

	logRotator *rotator.Rotator

	daoeLog = backendLog.Logger("DAOE")
	storLog = backendLog.Logger("STOR")
	keepLog = backendLog.Logger("KEEP")
	evntLog = backendLog.Logger("EVNT")
	authLog = backendLog.Logger("AUTH")
)

func init() {
	contract.UseLogger(daoeLog)
	sqlite.UseLogger(storLog)
	bolt.UseLogger(storLog)
	badger.UseLogger(storLog)
	keeper.UseLogger(keepLog)
	natsbus.UseLogger(evntLog)
	ethsig.UseLogger(authLog)
}

var subsystemLoggers = map[string]slog.Logger{
	"DAOE": daoeLog,
	"STOR": storLog,
	"KEEP": keepLog,
	"EVNT": evntLog,
	"AUTH": authLog,
}

// setupLogging is handed to the cli, it runs once the runtime config is parsed.
func setupLogging(cfg config.Runtime) error {
	if err := initLogRotator(cfg.LogPath(), 3); err != nil {
		return err
	}
	return setLogLevels(cfg.LogLevel)
}

// initLogRotator opens logFile with maxRolls old files kept next to it.
func initLogRotator(logFile string, maxRolls int) error {
	closeLogRotator()
	if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

func closeLogRotator() {
	if logRotator != nil {
		logRotator.Close()
		logRotator = nil
	}
}

// setLogLevels applies one level to every subsystem.
func setLogLevels(level string) error {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid log level %q", level)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}
	return nil
}
