package domain

import "errors"

// Domain errors. Check them with errors.Is.
var (
	// ErrSourceExhausted is returned by a replay source that has no more
	// records and is configured to stop. It ends the receive loop cleanly.
	ErrSourceExhausted = errors.New("seismograph: source exhausted")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("seismograph: invalid configuration")

	// ErrUnknownStorageMethod is returned for a storage method other than file or pipeline.
	ErrUnknownStorageMethod = errors.New("seismograph: unknown storage method")

	// ErrUnknownConnectionType is returned for a connection type other than test or server.
	ErrUnknownConnectionType = errors.New("seismograph: unknown connection type")

	// ErrUnknownExhaustPolicy is returned for a replay policy other than loop or exit.
	ErrUnknownExhaustPolicy = errors.New("seismograph: unknown exhaust policy")

	// ErrAlreadyRunning is returned when Start() is called on a running server.
	ErrAlreadyRunning = errors.New("seismograph: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped server.
	ErrNotRunning = errors.New("seismograph: not running")

	// ErrServerClosed is returned by Start() on a server that already ran.
	ErrServerClosed = errors.New("seismograph: server closed")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("seismograph: shutdown timeout")
)
