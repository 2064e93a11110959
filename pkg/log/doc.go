// Package log provides the logging abstraction used across the seismograph
// server.
//
// Components depend on the Logger interface only. The zerolog adapter is
// what the command wires in; the no-op logger is the library default and is
// handy in tests.
//
// # Usage
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//	logger.Info("batch flushed", log.Uint64("sequence", 1), log.Int("records", 101))
//
// Wrap an existing zerolog.Logger:
//
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// Derive a logger that stamps every line with a component name:
//
//	udpLog := log.With(logger, log.String("component", "udp"))
package log
