package core

// Phase is the playback state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePlaying
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// SessionState is an immutable snapshot of a playback session, suitable for
// rendering.
type SessionState struct {
	Track         *Track          `json:"track"`
	Phase         Phase           `json:"phase"`
	IsPlaying     bool            `json:"is_playing"`
	IsMaximized   bool            `json:"is_maximized"`
	Ready         bool            `json:"ready"`
	Source        *Source         `json:"source,omitempty"`
	Queue         []SimilarTrack  `json:"queue"`
	Stats         *RecommendStats `json:"stats,omitempty"`
	History       []string        `json:"history"`
	HistoryLength int             `json:"history_length"`
	// LoadFailures counts loads that found no playable source. It only
	// grows, so observers that coalesce snapshots still see a failure.
	LoadFailures  int             `json:"load_failures"`
}

// HasTrack returns true if there is an active track.
func (s *SessionState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// UpNext returns the head of the recommendation queue, or nil.
func (s *SessionState) UpNext() *SimilarTrack {
	if s == nil || len(s.Queue) == 0 {
		return nil
	}
	return &s.Queue[0]
}
