package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. ./moodshell.toml
//  2. $XDG_CONFIG_HOME/moodshell/config.toml
//  3. ~/.config/moodshell/config.toml
//
// If no file exists, returns DefaultConfig() with environment overrides.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MOODSHELL_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("MOODSHELL_WEB_URL"); v != "" {
		cfg.Web.BaseURL = v
	}
	if v := os.Getenv("MOODSHELL_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("MOODSHELL_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("MOODSHELL_PUSH_TOKEN"); v != "" {
		cfg.Push.DeviceToken = v
		cfg.Push.Enabled = true
	}
	if v := os.Getenv("MOODSHELL_USER_ID"); v != "" {
		cfg.Push.UserID = v
	}
	if v := os.Getenv("MOODSHELL_MODEL_PATH"); v != "" {
		cfg.Detection.ModelPath = v
	}
	if v := os.Getenv("MOODSHELL_NATIVE_FEATURES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Web.NativeFeatures = b
		}
	}
	if v := os.Getenv("MOODSHELL_DEEP_LINKING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Web.DeepLinking = b
		}
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{DefaultConfigName}

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "moodshell", "config.toml"))

	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "moodshell", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
