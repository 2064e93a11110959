package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				ServerIP:        "0.0.0.0",
				ServerPort:      20002,
				ConnectionType:  "test",
				StorageMethod:   "pipeline",
				DataDir:         "/var/lib/seismograph",
				FixturePath:     "/fixtures/quake.txt",
				ReplayOnExhaust: "exit",
				ReplayDelay:     "10ms",
				MaxSamples:      50,
				BackendURL:      "backend:8080",
				HostIP:          "192.168.1.20",
				Location:        "basement",
				HTTPTimeout:     "5s",
				MetricsAddr:     ":9102",
				LogLevel:        "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ServerIP:        "0.0.0.0",
				ServerPort:      20002,
				ConnectionType:  "test",
				StorageMethod:   "pipeline",
				DataDir:         "/var/lib/seismograph",
				FixturePath:     "/fixtures/quake.txt",
				ReplayOnExhaust: "exit",
				ReplayDelay:     10 * time.Millisecond,
				MaxSamples:      50,
				BackendURL:      "backend:8080",
				HostIP:          "192.168.1.20",
				Location:        "basement",
				HTTPTimeout:     5 * time.Second,
				MetricsAddr:     ":9102",
				LogLevel:        "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				ServerIP: "10.0.0.1",
				Location: "attic",
			},
			changed: map[string]bool{"server-ip": true},
			initial: Config{
				ServerIP: "127.0.0.1",
			},
			expected: Config{
				ServerIP: "127.0.0.1", // unchanged because flag was set
				Location: "attic",
			},
		},
		{
			name: "empty values keep defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    Config{MaxSamples: 100, StorageMethod: "file"},
			expected:   Config{MaxSamples: 100, StorageMethod: "file"},
		},
		{
			name: "zero replay delay disables the delay",
			fileConfig: FileConfig{
				ReplayDelay: "0s",
			},
			changed:  map[string]bool{},
			initial:  Config{ReplayDelay: 50 * time.Millisecond},
			expected: Config{},
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				HTTPTimeout: "soon",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("valid toml", func(t *testing.T) {
		content := strings.Join([]string{
			`server_ip = "0.0.0.0"`,
			`connection_type = "server"`,
			`storage_method = "pipeline"`,
			`backend_url = "backend:8080"`,
			`location = "lab"`,
			`max_samples = 200`,
			`http_timeout = "3s"`,
		}, "\n")
		path := filepath.Join(tmpDir, "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		fc, err := LoadFileConfig(path)
		if err != nil {
			t.Fatalf("LoadFileConfig() error = %v", err)
		}
		if fc.ServerIP != "0.0.0.0" || fc.StorageMethod != "pipeline" || fc.BackendURL != "backend:8080" {
			t.Errorf("LoadFileConfig() = %+v", fc)
		}
		if fc.MaxSamples != 200 || fc.HTTPTimeout != "3s" || fc.Location != "lab" {
			t.Errorf("LoadFileConfig() = %+v", fc)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := filepath.Join(tmpDir, "broken.toml")
		if err := os.WriteFile(path, []byte("server_ip = "), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFileConfig(path); err == nil {
			t.Error("LoadFileConfig() expected error for invalid toml")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFileConfig(filepath.Join(tmpDir, "nope.toml")); err == nil {
			t.Error("LoadFileConfig() expected error for missing file")
		}
	})
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("no home directory")
	}
	if !strings.HasSuffix(path, filepath.Join(".seismograph", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %s", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "exists")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Error("FileExists() = false for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "missing")) {
		t.Error("FileExists() = true for missing file")
	}
}
