package core

import (
	"context"

	"github.com/tessro/segue/internal/tuning"
)

// WidgetEventKind identifies a raw event emitted by a media widget.
type WidgetEventKind int

const (
	// WidgetLoaded is emitted when a newly loaded source starts.
	WidgetLoaded WidgetEventKind = iota
	// WidgetStateChanged carries the playing flag.
	WidgetStateChanged
	// WidgetEnded is emitted when a source plays to its end.
	WidgetEnded
	// WidgetFailed is emitted when a source cannot be played. Reason holds
	// the widget's error text.
	WidgetFailed
)

// WidgetEvent is a raw event from a media widget.
type WidgetEvent struct {
	Kind    WidgetEventKind
	Playing bool
	Reason  string
}

// Widget is an externally-owned media player. Commands are fire-and-forget:
// their effect is observed through Events, not through return values.
type Widget interface {
	// Bootstrap launches the widget and blocks until it accepts commands.
	// A nil return means the widget is ready.
	Bootstrap(ctx context.Context) error

	Load(src Source) error
	Play() error
	Pause() error
	Stop() error

	// Events is closed when the widget shuts down.
	Events() <-chan WidgetEvent

	Close() error
}

// Catalog browses and searches tracks.
type Catalog interface {
	TopTracks(ctx context.Context, page int) ([]Track, error)
	Search(ctx context.Context, query string) ([]Track, error)
	Track(ctx context.Context, mbid string) (*Track, error)
}

// SourceResolver resolves playable sources for a track. The first source is
// authoritative.
type SourceResolver interface {
	Sources(ctx context.Context, mbid string) ([]Source, error)
}

// RecommendRequest asks for tracks similar to Target.
type RecommendRequest struct {
	Target   string
	Listened []string
	Tuning   tuning.Config
	Limit    int
}

// Recommendation is a ranked list of similar tracks plus stats.
type Recommendation struct {
	Target  *Track
	Similar []SimilarTrack
	Stats   RecommendStats
}

// Recommender fetches similar tracks.
type Recommender interface {
	Recommend(ctx context.Context, req *RecommendRequest) (*Recommendation, error)
}
