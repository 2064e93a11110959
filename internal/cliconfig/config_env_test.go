package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"SEISMOGRAPH_SERVER_IP":         "192.168.0.5",
				"SEISMOGRAPH_SERVER_PORT":       "20005",
				"SEISMOGRAPH_CONNECTION_TYPE":   "test",
				"SEISMOGRAPH_STORAGE_METHOD":    "pipeline",
				"SEISMOGRAPH_DATA_DIR":          "/data",
				"SEISMOGRAPH_FIXTURE_PATH":      "/fixture.txt",
				"SEISMOGRAPH_REPLAY_ON_EXHAUST": "exit",
				"SEISMOGRAPH_REPLAY_DELAY":      "1ms",
				"SEISMOGRAPH_MAX_SAMPLES":       "10",
				"SEISMOGRAPH_BACKEND_URL":       "backend:80",
				"SEISMOGRAPH_HOST_IP":           "10.1.1.1",
				"SEISMOGRAPH_LOCATION":          "garage",
				"SEISMOGRAPH_HTTP_TIMEOUT":      "2s",
				"SEISMOGRAPH_METRICS_ADDR":      ":9100",
				"SEISMOGRAPH_LOG_LEVEL":         "warn",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ServerIP:        "192.168.0.5",
				ServerPort:      20005,
				ConnectionType:  "test",
				StorageMethod:   "pipeline",
				DataDir:         "/data",
				FixturePath:     "/fixture.txt",
				ReplayOnExhaust: "exit",
				ReplayDelay:     time.Millisecond,
				MaxSamples:      10,
				BackendURL:      "backend:80",
				HostIP:          "10.1.1.1",
				Location:        "garage",
				HTTPTimeout:     2 * time.Second,
				MetricsAddr:     ":9100",
				LogLevel:        "warn",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"SEISMOGRAPH_STORAGE_METHOD":  "pipeline",
				"SEISMOGRAPH_CONNECTION_TYPE": "test",
			},
			changed: map[string]bool{"storage-method": true},
			initial: Config{StorageMethod: "file"},
			expected: Config{
				StorageMethod:  "file",
				ConnectionType: "test",
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"SEISMOGRAPH_REPLAY_DELAY": "fast",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"SEISMOGRAPH_MAX_SAMPLES": "lots",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("LoadDotEnv() error = %v", err)
		}
	})

	t.Run("process env wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "SEISMOGRAPH_LOCATION=from-file\nSEISMOGRAPH_HOST_IP=10.9.9.9\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SEISMOGRAPH_LOCATION", "from-env")
		// Register cleanup for the variable the file sets.
		t.Setenv("SEISMOGRAPH_HOST_IP", "")
		os.Unsetenv("SEISMOGRAPH_HOST_IP")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}

		cfg := Config{}
		if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
			t.Fatalf("ApplyEnvConfig() error = %v", err)
		}
		if cfg.Location != "from-env" {
			t.Errorf("Location = %q, want from-env", cfg.Location)
		}
		if cfg.HostIP != "10.9.9.9" {
			t.Errorf("HostIP = %q, want 10.9.9.9", cfg.HostIP)
		}
	})
}
