// Package config loads the optional YAML configuration for nmwifi.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "nmwifi"
	configFileName = "config.yaml"
)

// Config holds user settings.
//
// Example YAML:
//
//	nmcli_path: /usr/bin/nmcli
//	command_timeout: 30s
//	interface: wlan0
//	max_rows: 4
//	confirm_forget: true
//	mask_password: false
//	log_level: debug
//	log_file: /tmp/nmwifi.log
type Config struct {
	NmcliPath string `yaml:"nmcli_path,omitempty"`

	// CommandTimeout bounds every nmcli call. Zero leaves calls unbounded.
	CommandTimeout time.Duration `yaml:"command_timeout,omitempty"`

	// Interface pins the wireless device used for the IP lookup. Empty picks
	// the first device of type wifi.
	Interface string `yaml:"interface,omitempty"`

	// MaxRows caps the number of visible list rows. Zero fills the terminal.
	MaxRows int `yaml:"max_rows,omitempty"`

	ConfirmForget bool `yaml:"confirm_forget,omitempty"`
	MaskPassword  bool `yaml:"mask_password,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		NmcliPath: "nmcli",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/nmwifi/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, configDirName, configFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", configFileName)
	}
	return filepath.Join(home, ".config", configDirName, configFileName)
}

// Load reads the config from the default path.
func Load() (Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the config at path. A missing file yields Default().
func LoadFrom(path string) (Config, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config file %q: %w", resolved, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", resolved, err)
	}

	if strings.TrimSpace(cfg.NmcliPath) == "" {
		cfg.NmcliPath = Default().NmcliPath
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %q: %w", resolved, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative, got %s", c.CommandTimeout)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	}
	return nil
}
