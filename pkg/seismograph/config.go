package seismograph

import (
	"fmt"
	"net/http"
	"time"

	"github.com/simplay/seismograph-server/internal/domain"
)

// Defaults applied by Config.SetDefaults.
const (
	DefaultServerPort  = domain.ServerPort
	DefaultMaxSamples  = domain.MaxSamples
	DefaultDataDir     = "data"
	DefaultHTTPTimeout = 15 * time.Second
)

// Config holds the settings of a Server.
type Config struct {
	// ServerIP is the address the UDP socket binds; empty means all interfaces
	ServerIP string
	// ServerPort is the UDP port, 20001 by default
	ServerPort int

	// ConnectionType is "server" for the UDP socket or "test" for fixture replay
	ConnectionType string
	// StorageMethod is "file" or "pipeline"
	StorageMethod string

	// DataDir receives batch files when StorageMethod is "file"
	DataDir string

	// FixturePath is the file replayed when ConnectionType is "test"
	FixturePath string
	// ReplayOnExhaust is "loop" (default) or "exit"
	ReplayOnExhaust string
	// ReplayDelay is the pause between replayed records; zero disables it
	ReplayDelay time.Duration

	// MaxSamples is the batch threshold. A batch flushes once it holds
	// more than MaxSamples records.
	MaxSamples int

	// BackendURL is host[:port] (or a base URL) of the pipeline backend
	BackendURL string
	// HostIP and Location are sent with every pipeline batch
	HostIP   string
	Location string

	// HTTPTimeout bounds each pipeline request
	HTTPTimeout time.Duration

	// ConfigPath is the file the settings were read from, if any.
	// Plugins such as the config watcher use it.
	ConfigPath string
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.ServerPort == 0 {
		c.ServerPort = DefaultServerPort
	}
	if c.ConnectionType == "" {
		c.ConnectionType = string(domain.ConnectionServer)
	}
	if c.StorageMethod == "" {
		c.StorageMethod = string(domain.StorageFile)
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.ReplayOnExhaust == "" {
		c.ReplayOnExhaust = string(domain.ExhaustLoop)
	}
	if c.MaxSamples == 0 {
		c.MaxSamples = DefaultMaxSamples
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
}

// Validate checks the configuration. An unknown connection type, storage
// method or exhaust policy is an error.
func (c *Config) Validate() error {
	if _, err := c.selectors(); err != nil {
		return err
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: server port %d out of range", domain.ErrInvalidConfig, c.ServerPort)
	}
	if c.MaxSamples <= 0 {
		return fmt.Errorf("%w: max samples must be positive", domain.ErrInvalidConfig)
	}
	if c.ReplayDelay < 0 {
		return fmt.Errorf("%w: replay delay must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// selection is the parsed form of the configured names.
type selection struct {
	connection domain.ConnectionType
	storage    domain.StorageMethod
	exhaust    domain.ExhaustPolicy
}

func (c *Config) selectors() (selection, error) {
	var sel selection
	var err error
	if sel.connection, err = domain.ParseConnectionType(c.ConnectionType); err != nil {
		return sel, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if sel.storage, err = domain.ParseStorageMethod(c.StorageMethod); err != nil {
		return sel, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if sel.exhaust, err = domain.ParseExhaustPolicy(c.ReplayOnExhaust); err != nil {
		return sel, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return sel, nil
}

func (c *Config) httpClient() *http.Client {
	return &http.Client{Timeout: c.HTTPTimeout}
}
