package config

import "github.com/tessro/segue/internal/tuning"

// Config is the root configuration structure.
type Config struct {
	API       APIConfig       `toml:"api"`
	Player    PlayerConfig    `toml:"player"`
	Recommend RecommendConfig `toml:"recommend"`
	Tail      TailConfig      `toml:"tail"`
	TUI       TUIConfig       `toml:"tui"`
	Log       LogConfig       `toml:"log"`
}

// APIConfig holds catalog and recommendation service settings.
type APIConfig struct {
	BaseURL    string  `toml:"base_url"`
	Timeout    int     `toml:"timeout"`
	RateLimit  float64 `toml:"rate_limit"`
	MaxRetries int     `toml:"max_retries"`
}

// PlayerConfig holds mpv settings.
type PlayerConfig struct {
	MPVPath      string   `toml:"mpv_path"`
	SocketPath   string   `toml:"socket_path"`
	StartTimeout int      `toml:"start_timeout"`
	Video        bool     `toml:"video"`
	ExtraArgs    []string `toml:"extra_args"`
}

// RecommendConfig seeds the tuning defaults. Pointer fields distinguish
// "unset" from an explicit zero.
type RecommendConfig struct {
	Limit               int      `toml:"limit"`
	SameGenre           *bool    `toml:"same_genre"`
	SameDecade          *bool    `toml:"same_decade"`
	GenreClassification string   `toml:"genre_classification"`
	Similarity          *float64 `toml:"similarity"`
	ExcludeArtists      []string `toml:"exclude_artists"`
}

// TailConfig holds settings for the session event feed.
type TailConfig struct {
	Emoji      bool `toml:"emoji"`
	Timestamps bool `toml:"timestamps"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	Format string `toml:"format"`
}

// Tuning returns the tuning defaults described by this section.
func (c *RecommendConfig) Tuning() tuning.Config {
	t := tuning.Default()
	if c.SameGenre != nil {
		t.Filters.SameGenre = *c.SameGenre
	}
	if c.SameDecade != nil {
		t.Filters.SameDecade = *c.SameDecade
	}
	if c.GenreClassification != "" {
		t.Filters.GenreClassification = tuning.GenreClassification(c.GenreClassification)
	}
	if c.Similarity != nil {
		t.Total = tuning.Split(*c.Similarity)
	}
	if len(c.ExcludeArtists) > 0 {
		t.Filters.ExcludeArtists = append([]string(nil), c.ExcludeArtists...)
	}
	return t
}
