package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000/api/v1/",
			Timeout:    30,
			MaxRetries: 3,
		},
		Player: PlayerConfig{
			MPVPath:      "mpv",
			StartTimeout: 10,
		},
		Recommend: RecommendConfig{
			Limit:               50,
			GenreClassification: "rosamerica",
		},
		Tail: TailConfig{
			Emoji: true,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// API
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = d.API.Timeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = d.API.MaxRetries
	}

	// Player
	if c.Player.MPVPath == "" {
		c.Player.MPVPath = d.Player.MPVPath
	}
	if c.Player.StartTimeout == 0 {
		c.Player.StartTimeout = d.Player.StartTimeout
	}

	// Recommend
	if c.Recommend.Limit == 0 {
		c.Recommend.Limit = d.Recommend.Limit
	}
	if c.Recommend.GenreClassification == "" {
		c.Recommend.GenreClassification = d.Recommend.GenreClassification
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
