package domain

import (
	"errors"
	"testing"
)

func TestParseStorageMethod(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    StorageMethod
		wantErr bool
	}{
		{"file", "file", StorageFile, false},
		{"pipeline", "pipeline", StoragePipeline, false},
		{"case and space insensitive", " Pipeline ", StoragePipeline, false},
		{"empty", "", "", true},
		{"unknown", "s3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStorageMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStorageMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownStorageMethod) {
				t.Errorf("error = %v, want ErrUnknownStorageMethod", err)
			}
			if got != tt.want {
				t.Errorf("ParseStorageMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseConnectionType(t *testing.T) {
	tests := []struct {
		in      string
		want    ConnectionType
		wantErr bool
	}{
		{"test", ConnectionTest, false},
		{"server", ConnectionServer, false},
		{"SERVER", ConnectionServer, false},
		{"tcp", "", true},
	}

	for _, tt := range tests {
		got, err := ParseConnectionType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConnectionType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnknownConnectionType) {
			t.Errorf("error = %v, want ErrUnknownConnectionType", err)
		}
		if got != tt.want {
			t.Errorf("ParseConnectionType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseExhaustPolicy(t *testing.T) {
	if p, err := ParseExhaustPolicy("loop"); err != nil || p != ExhaustLoop {
		t.Errorf("ParseExhaustPolicy(loop) = %q, %v", p, err)
	}
	if p, err := ParseExhaustPolicy("exit"); err != nil || p != ExhaustExit {
		t.Errorf("ParseExhaustPolicy(exit) = %q, %v", p, err)
	}
	if _, err := ParseExhaustPolicy("forever"); !errors.Is(err, ErrUnknownExhaustPolicy) {
		t.Errorf("ParseExhaustPolicy(forever) error = %v, want ErrUnknownExhaustPolicy", err)
	}
}
