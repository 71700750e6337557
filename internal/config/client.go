package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ClientConfig is the emulsionctl configuration.
type ClientConfig struct {
	Server   string   `toml:"server"`
	Timeout  Duration `toml:"timeout"`
	LogLevel string   `toml:"log_level"`
	// RefreshOnFailure re-fetches the whole board after a failed remote call.
	RefreshOnFailure bool `toml:"refresh_on_failure"`
}

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultClientConfig returns the settings used when no file exists.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Server:   "http://localhost:8080",
		Timeout:  Duration{10 * time.Second},
		LogLevel: "warn",
	}
}

// DefaultClientConfigPath is ~/.config/emulsion/config.toml, or the
// equivalent under the platform's config directory.
func DefaultClientConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "emulsion", "config.toml"), nil
}

// LoadClient reads path over the defaults, then applies the EMULSION_SERVER
// and EMULSION_TIMEOUT overrides. A missing file is not an error.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if v := os.Getenv("EMULSION_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("EMULSION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("EMULSION_TIMEOUT: %w", err)
		}
		cfg.Timeout = Duration{d}
	}

	if cfg.Server == "" {
		return nil, errors.New("server address is empty")
	}
	if cfg.Timeout.Duration <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	return cfg, nil
}

// WriteClient writes cfg to path, creating the parent directory.
func WriteClient(path string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	return f.Close()
}
