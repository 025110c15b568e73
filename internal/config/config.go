package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	segueerrors "github.com/tessro/segue/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.seguerc, $XDG_CONFIG_HOME/segue/config.toml, ~/.config/segue/config.toml
func Load() (*Config, error) {
	path := FindConfigFile()
	if path == "" {
		cfg := &Config{}
		cfg.ApplyDefaults()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", segueerrors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", segueerrors.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindConfigFile returns the first existing config file path, or "".
func FindConfigFile() string {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where `segue config init` writes a new file.
func DefaultPath() string {
	paths := searchPaths()
	if len(paths) == 0 {
		return ".seguerc"
	}
	return paths[len(paths)-1]
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".seguerc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "segue", "config.toml"))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// API
	if v := os.Getenv("SEGUE_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SEGUE_API_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.API.Timeout = i
		}
	}
	if v := os.Getenv("SEGUE_API_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.API.RateLimit = f
		}
	}

	// Player
	if v := os.Getenv("SEGUE_PLAYER_MPV_PATH"); v != "" {
		cfg.Player.MPVPath = v
	}
	if v := os.Getenv("SEGUE_PLAYER_SOCKET_PATH"); v != "" {
		cfg.Player.SocketPath = v
	}
	if v := os.Getenv("SEGUE_PLAYER_VIDEO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Player.Video = b
		}
	}

	// Recommend
	if v := os.Getenv("SEGUE_RECOMMEND_LIMIT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Recommend.Limit = i
		}
	}
	if v := os.Getenv("SEGUE_RECOMMEND_GENRE_CLASSIFICATION"); v != "" {
		cfg.Recommend.GenreClassification = strings.ToLower(v)
	}

	// TUI
	if v := os.Getenv("SEGUE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("SEGUE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SEGUE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("SEGUE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
