package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("api: %w", err))
	}
	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if err := c.Recommend.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("recommend: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks APIConfig for errors.
func (c *APIConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url: %s (must be http or https)", c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must be non-negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	return nil
}

// Validate checks PlayerConfig for errors.
func (c *PlayerConfig) Validate() error {
	if c.StartTimeout < 0 {
		return errors.New("start_timeout must be non-negative")
	}
	return nil
}

// Validate checks RecommendConfig for errors.
func (c *RecommendConfig) Validate() error {
	if c.Limit < 0 {
		return errors.New("limit must be non-negative")
	}
	if c.Similarity != nil && (*c.Similarity < 0 || *c.Similarity > 1) {
		return fmt.Errorf("similarity must be between 0 and 1, got %v", *c.Similarity)
	}
	return c.Tuning().Validate()
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	switch c.Format {
	case "", "text", "json":
		// valid
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Format)
	}
	return nil
}
