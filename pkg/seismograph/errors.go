package seismograph

import "github.com/simplay/seismograph-server/internal/domain"

// Errors returned by the server. Check them with errors.Is.
var (
	ErrInvalidConfig         = domain.ErrInvalidConfig
	ErrUnknownStorageMethod  = domain.ErrUnknownStorageMethod
	ErrUnknownConnectionType = domain.ErrUnknownConnectionType
	ErrUnknownExhaustPolicy  = domain.ErrUnknownExhaustPolicy
	ErrAlreadyRunning        = domain.ErrAlreadyRunning
	ErrNotRunning            = domain.ErrNotRunning
	ErrServerClosed          = domain.ErrServerClosed
	ErrShutdownTimeout       = domain.ErrShutdownTimeout
)
