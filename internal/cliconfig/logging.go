package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/simplay/seismograph-server/pkg/log"
)

// Logger returns the command's console logger at the named level.
// An unparsable level falls back to info; Validate reports it separately.
func Logger(level string) zerolog.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return log.NewConsoleLogger(os.Stderr, lvl)
}
