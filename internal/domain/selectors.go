package domain

import (
	"fmt"
	"strings"
)

// StorageMethod selects the sink a completed batch is flushed to.
type StorageMethod string

const (
	StorageFile     StorageMethod = "file"
	StoragePipeline StorageMethod = "pipeline"
)

// ParseStorageMethod maps a configured name to a StorageMethod.
func ParseStorageMethod(name string) (StorageMethod, error) {
	switch m := StorageMethod(strings.ToLower(strings.TrimSpace(name))); m {
	case StorageFile, StoragePipeline:
		return m, nil
	}
	return "", fmt.Errorf("%w %q (want file or pipeline)", ErrUnknownStorageMethod, name)
}

// ConnectionType selects where records come from.
type ConnectionType string

const (
	// ConnectionTest replays a fixture file
	ConnectionTest ConnectionType = "test"
	// ConnectionServer listens on the UDP socket
	ConnectionServer ConnectionType = "server"
)

// ParseConnectionType maps a configured name to a ConnectionType.
func ParseConnectionType(name string) (ConnectionType, error) {
	switch t := ConnectionType(strings.ToLower(strings.TrimSpace(name))); t {
	case ConnectionTest, ConnectionServer:
		return t, nil
	}
	return "", fmt.Errorf("%w %q (want test or server)", ErrUnknownConnectionType, name)
}

// ExhaustPolicy decides what a replay source does after its last record.
type ExhaustPolicy string

const (
	// ExhaustLoop restarts from the first record
	ExhaustLoop ExhaustPolicy = "loop"
	// ExhaustExit ends the run with ErrSourceExhausted
	ExhaustExit ExhaustPolicy = "exit"
)

// ParseExhaustPolicy maps a configured name to an ExhaustPolicy.
func ParseExhaustPolicy(name string) (ExhaustPolicy, error) {
	switch p := ExhaustPolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case ExhaustLoop, ExhaustExit:
		return p, nil
	}
	return "", fmt.Errorf("%w %q (want loop or exit)", ErrUnknownExhaustPolicy, name)
}
