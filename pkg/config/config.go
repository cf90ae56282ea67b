package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultUnityHost is the host the Unity editor bridge listens on
	DefaultUnityHost = "localhost"
	// DefaultUnityPort is the TCP port of the Unity editor bridge
	DefaultUnityPort = 6400

	defaultDialTimeoutSeconds    = 10
	defaultCommandTimeoutSeconds = 30
	defaultSettleSeconds         = 3
)

// EnvConfigPath names the environment variable pointing at a settings file
const EnvConfigPath = "UNITY_MCP_CONFIG"

// Settings holds unity-mcp configuration
type Settings struct {
	// UnityHost is the host the Unity editor bridge listens on.
	// Default: "localhost"
	UnityHost string `toml:"unity_host,omitempty"`

	// UnityPort is the TCP port of the Unity editor bridge.
	// Default: 6400
	UnityPort int `toml:"unity_port,omitempty"`

	// DialTimeoutSeconds bounds the TCP connect to the bridge.
	// Default: 10
	DialTimeoutSeconds int `toml:"dial_timeout_seconds,omitempty"`

	// CommandTimeoutSeconds bounds a single command round trip.
	// Default: 30
	CommandTimeoutSeconds int `toml:"command_timeout_seconds,omitempty"`

	// SettleSeconds is the wait after triggering a compilation before
	// the editor log is read.
	// Default: 3
	SettleSeconds int `toml:"settle_seconds,omitempty"`

	// EditorLogPath overrides the Editor.log location.
	// Default: resolved from LOCALAPPDATA, or the WSL view of the
	// Windows user profile when LOCALAPPDATA is unset.
	EditorLogPath string `toml:"editor_log_path,omitempty"`
}

// Default returns the settings used when no file or environment
// overrides are present.
func Default() Settings {
	return Settings{
		UnityHost:             DefaultUnityHost,
		UnityPort:             DefaultUnityPort,
		DialTimeoutSeconds:    defaultDialTimeoutSeconds,
		CommandTimeoutSeconds: defaultCommandTimeoutSeconds,
		SettleSeconds:         defaultSettleSeconds,
	}
}

// Load reads settings from the given TOML file, falling back to
// $UNITY_MCP_CONFIG when path is empty, and applies the UNITY_HOST and
// UNITY_PORT environment overrides on top. Fields absent from the file
// keep their defaults.
func Load(path string) (Settings, error) {
	settings := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &settings); err != nil {
			return Settings{}, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	}

	if host := os.Getenv("UNITY_HOST"); host != "" {
		settings.UnityHost = host
	}
	if port := os.Getenv("UNITY_PORT"); port != "" {
		value, err := strconv.Atoi(port)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid UNITY_PORT %q: %w", port, err)
		}
		settings.UnityPort = value
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks that the settings values are valid.
func (s Settings) Validate() error {
	if s.UnityHost == "" {
		return fmt.Errorf("unity_host must not be empty")
	}
	if s.UnityPort < 1 || s.UnityPort > 65535 {
		return fmt.Errorf("unity_port %d is out of range", s.UnityPort)
	}
	if s.DialTimeoutSeconds < 0 || s.CommandTimeoutSeconds < 0 || s.SettleSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// UnityAddr returns the host:port address of the editor bridge.
func (s Settings) UnityAddr() string {
	return net.JoinHostPort(s.UnityHost, strconv.Itoa(s.UnityPort))
}

// DialTimeout returns the bridge connect timeout as a duration.
func (s Settings) DialTimeout() time.Duration {
	return time.Duration(s.DialTimeoutSeconds) * time.Second
}

// CommandTimeout returns the command round-trip timeout as a duration.
func (s Settings) CommandTimeout() time.Duration {
	return time.Duration(s.CommandTimeoutSeconds) * time.Second
}

// SettleInterval returns the post-trigger wait as a duration.
func (s Settings) SettleInterval() time.Duration {
	return time.Duration(s.SettleSeconds) * time.Second
}
