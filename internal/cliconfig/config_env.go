package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment variable the server reads.
const EnvPrefix = "SEISMOGRAPH_"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win over the file. A missing file is not
// an error; an empty path means ".env" in the working directory.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (SEISMOGRAPH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("server-ip", env("SERVER_IP"), &cfg.ServerIP)
	s.setString("connection-type", env("CONNECTION_TYPE"), &cfg.ConnectionType)
	s.setString("storage-method", env("STORAGE_METHOD"), &cfg.StorageMethod)
	s.setString("data-dir", env("DATA_DIR"), &cfg.DataDir)
	s.setString("fixture", env("FIXTURE_PATH"), &cfg.FixturePath)
	s.setString("on-exhaust", env("REPLAY_ON_EXHAUST"), &cfg.ReplayOnExhaust)
	s.setString("backend-url", env("BACKEND_URL"), &cfg.BackendURL)
	s.setString("host-ip", env("HOST_IP"), &cfg.HostIP)
	s.setString("location", env("LOCATION"), &cfg.Location)
	s.setString("metrics-addr", env("METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("replay-delay", env("REPLAY_DELAY"), &cfg.ReplayDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", env("HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("server-port", env("SERVER_PORT"), &cfg.ServerPort); err != nil {
		return err
	}
	if err := s.setIntFromString("max-samples", env("MAX_SAMPLES"), &cfg.MaxSamples); err != nil {
		return err
	}

	return nil
}

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}
