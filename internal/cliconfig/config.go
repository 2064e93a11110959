package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/pkg/log"
)

// DefaultFixturePath is the recorded session replayed in test mode.
const DefaultFixturePath = "test_data/seismograph_1623428408489_1.txt"

// Config holds CLI configuration for the seismograph server.
type Config struct {
	ServerIP   string
	ServerPort int

	ConnectionType string
	StorageMethod  string

	DataDir string

	FixturePath     string
	ReplayOnExhaust string
	ReplayDelay     time.Duration

	MaxSamples int

	BackendURL  string
	HostIP      string
	Location    string
	HTTPTimeout time.Duration

	MetricsAddr string
	LogLevel    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServerPort:      domain.ServerPort,
		ConnectionType:  string(domain.ConnectionServer),
		StorageMethod:   string(domain.StorageFile),
		DataDir:         "data",
		FixturePath:     DefaultFixturePath,
		ReplayOnExhaust: string(domain.ExhaustLoop),
		ReplayDelay:     50 * time.Millisecond,
		MaxSamples:      domain.MaxSamples,
		HTTPTimeout:     15 * time.Second,
		LogLevel:        "info",
	}
}

// Validate checks the configuration for errors and normalizes selector names.
// Every error wraps domain.ErrInvalidConfig; unknown selector names also wrap
// the matching domain error.
func (c *Config) Validate() error {
	conn, err := domain.ParseConnectionType(c.ConnectionType)
	if err != nil {
		return invalid(err)
	}
	c.ConnectionType = string(conn)

	storage, err := domain.ParseStorageMethod(c.StorageMethod)
	if err != nil {
		return invalid(err)
	}
	c.StorageMethod = string(storage)

	if conn == domain.ConnectionTest {
		policy, err := domain.ParseExhaustPolicy(c.ReplayOnExhaust)
		if err != nil {
			return invalid(err)
		}
		c.ReplayOnExhaust = string(policy)
		if c.FixturePath == "" {
			return invalid(fmt.Errorf("fixture is required for connection type test"))
		}
		if c.ReplayDelay < 0 {
			return invalid(fmt.Errorf("replay delay must not be negative"))
		}
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return invalid(fmt.Errorf("server port %d out of range", c.ServerPort))
	}
	if c.MaxSamples <= 0 {
		return invalid(fmt.Errorf("max samples must be positive"))
	}

	// Ensure no trailing slash
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	if storage == domain.StoragePipeline {
		if c.BackendURL == "" {
			return invalid(fmt.Errorf("backend url is required for storage method pipeline"))
		}
		if c.HTTPTimeout <= 0 {
			return invalid(fmt.Errorf("http timeout must be positive"))
		}
	}
	if storage == domain.StorageFile && c.DataDir == "" {
		return invalid(fmt.Errorf("data dir is required for storage method file"))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return invalid(fmt.Errorf("log level %q: %w", c.LogLevel, err))
	}

	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
// "0s" is accepted so a file or env var can switch the replay delay off.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// Settings returns the configuration keyed by the TOML names, for logging
// and for comparing two configurations.
func (c Config) Settings() map[string]string {
	return map[string]string{
		"server_ip":         c.ServerIP,
		"server_port":       strconv.Itoa(c.ServerPort),
		"connection_type":   c.ConnectionType,
		"storage_method":    c.StorageMethod,
		"data_dir":          c.DataDir,
		"fixture_path":      c.FixturePath,
		"replay_on_exhaust": c.ReplayOnExhaust,
		"replay_delay":      c.ReplayDelay.String(),
		"max_samples":       strconv.Itoa(c.MaxSamples),
		"backend_url":       c.BackendURL,
		"host_ip":           c.HostIP,
		"location":          c.Location,
		"http_timeout":      c.HTTPTimeout.String(),
		"metrics_addr":      c.MetricsAddr,
		"log_level":         c.LogLevel,
	}
}
