package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks the environment variables Load consults so tests
// start from a known state.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvConfigPath, "")
	t.Setenv("UNITY_HOST", "")
	t.Setenv("UNITY_PORT", "")
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unity-mcp.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	settings, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.UnityAddr() != "localhost:6400" {
		t.Errorf("expected default addr 'localhost:6400', got %q", settings.UnityAddr())
	}
	if settings.DialTimeout() != 10*time.Second {
		t.Errorf("expected dial timeout 10s, got %v", settings.DialTimeout())
	}
	if settings.CommandTimeout() != 30*time.Second {
		t.Errorf("expected command timeout 30s, got %v", settings.CommandTimeout())
	}
	if settings.SettleInterval() != 3*time.Second {
		t.Errorf("expected settle interval 3s, got %v", settings.SettleInterval())
	}
	if settings.EditorLogPath != "" {
		t.Errorf("expected no editor log override, got %q", settings.EditorLogPath)
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `
unity_host = "devbox"
unity_port = 7777
settle_seconds = 1
editor_log_path = "/tmp/Editor.log"
`)

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.UnityAddr() != "devbox:7777" {
		t.Errorf("expected addr 'devbox:7777', got %q", settings.UnityAddr())
	}
	if settings.SettleInterval() != time.Second {
		t.Errorf("expected settle interval 1s, got %v", settings.SettleInterval())
	}
	if settings.EditorLogPath != "/tmp/Editor.log" {
		t.Errorf("expected editor log override, got %q", settings.EditorLogPath)
	}
	// Fields absent from the file keep their defaults
	if settings.DialTimeout() != 10*time.Second {
		t.Errorf("expected default dial timeout, got %v", settings.DialTimeout())
	}
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `unity_port = 6500`)
	t.Setenv(EnvConfigPath, path)

	settings, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.UnityPort != 6500 {
		t.Errorf("expected port 6500 from %s, got %d", EnvConfigPath, settings.UnityPort)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `
unity_host = "from-file"
unity_port = 6500
`)
	t.Setenv("UNITY_HOST", "from-env")
	t.Setenv("UNITY_PORT", "6600")

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.UnityAddr() != "from-env:6600" {
		t.Errorf("expected env overrides to win, got %q", settings.UnityAddr())
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNITY_PORT", "not-a-port")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to load settings") {
		t.Errorf("expected load error, got %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Settings)
		wantErr  bool
		errPiece string
	}{
		{
			name:   "defaults are valid",
			mutate: func(s *Settings) {},
		},
		{
			name:     "empty host",
			mutate:   func(s *Settings) { s.UnityHost = "" },
			wantErr:  true,
			errPiece: "unity_host",
		},
		{
			name:     "port too small",
			mutate:   func(s *Settings) { s.UnityPort = 0 },
			wantErr:  true,
			errPiece: "out of range",
		},
		{
			name:     "port too large",
			mutate:   func(s *Settings) { s.UnityPort = 70000 },
			wantErr:  true,
			errPiece: "out of range",
		},
		{
			name:     "negative timeout",
			mutate:   func(s *Settings) { s.DialTimeoutSeconds = -1 },
			wantErr:  true,
			errPiece: "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := Default()
			tt.mutate(&settings)

			err := settings.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errPiece) {
					t.Errorf("expected error to mention %q, got %q", tt.errPiece, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
