package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServerIP        string `toml:"server_ip"`
	ServerPort      int    `toml:"server_port"`
	ConnectionType  string `toml:"connection_type"`
	StorageMethod   string `toml:"storage_method"`
	DataDir         string `toml:"data_dir"`
	FixturePath     string `toml:"fixture_path"`
	ReplayOnExhaust string `toml:"replay_on_exhaust"`
	ReplayDelay     string `toml:"replay_delay"`
	MaxSamples      int    `toml:"max_samples"`
	BackendURL      string `toml:"backend_url"`
	HostIP          string `toml:"host_ip"`
	Location        string `toml:"location"`
	HTTPTimeout     string `toml:"http_timeout"`
	MetricsAddr     string `toml:"metrics_addr"`
	LogLevel        string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.seismograph/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".seismograph", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("server-ip", fc.ServerIP, &cfg.ServerIP)
	s.setString("connection-type", fc.ConnectionType, &cfg.ConnectionType)
	s.setString("storage-method", fc.StorageMethod, &cfg.StorageMethod)
	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("fixture", fc.FixturePath, &cfg.FixturePath)
	s.setString("on-exhaust", fc.ReplayOnExhaust, &cfg.ReplayOnExhaust)
	s.setString("backend-url", fc.BackendURL, &cfg.BackendURL)
	s.setString("host-ip", fc.HostIP, &cfg.HostIP)
	s.setString("location", fc.Location, &cfg.Location)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("replay-delay", fc.ReplayDelay, &cfg.ReplayDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("server-port", fc.ServerPort, &cfg.ServerPort)
	s.setInt("max-samples", fc.MaxSamples, &cfg.MaxSamples)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
