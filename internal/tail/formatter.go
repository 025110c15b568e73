package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      e.Type.String(),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil && e.Current.Track != nil {
		data.MBID = e.Current.Track.MBID
		data.Title = e.Current.Track.Title
		data.Artist = e.Current.Track.ArtistNames()
		data.Album = e.Current.Track.AlbumName()
		data.Year = e.Current.Track.Album.Year()
	}

	if e.Current != nil {
		data.Phase = e.Current.Phase.String()
		data.Queue = len(e.Current.Queue)
		data.History = e.Current.HistoryLength
		if e.Current.Stats != nil {
			data.Candidates = e.Current.Stats.CandidateCount
		}
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type       string
	Emoji      string
	Timestamp  time.Time
	Time       string
	MBID       string
	Title      string
	Artist     string
	Album      string
	Year       int
	Phase      string
	Queue      int
	History    int
	Candidates int
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if e.Current != nil && e.Current.Track != nil {
			return fmt.Sprintf("Now playing: %s - %s",
				e.Current.Track.ArtistNames(),
				e.Current.Track.Title)
		}
		return "Track changed"

	case EventTrackEnded:
		if e.Current != nil && e.Current.Track != nil {
			if len(e.Current.Queue) == 0 {
				return fmt.Sprintf("Finished: %s - %s (no more recommendations)",
					e.Current.Track.ArtistNames(),
					e.Current.Track.Title)
			}
			return fmt.Sprintf("Finished: %s - %s",
				e.Current.Track.ArtistNames(),
				e.Current.Track.Title)
		}
		return "Track ended"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventQueueRefresh:
		if e.Current != nil && e.Current.Stats != nil {
			return fmt.Sprintf("Up next: %d similar tracks from %s candidates in %.2fs",
				len(e.Current.Queue),
				humanize.Comma(int64(e.Current.Stats.CandidateCount)),
				e.Current.Stats.SearchTime)
		}
		return "Recommendations updated"

	case EventPlayerReady:
		return "Player ready"

	case EventReset:
		return "Session reset"

	case EventLoadFailed:
		return "No playable source, skipped"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackEnded:
		return "✅"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventQueueRefresh:
		return "🔀"
	case EventPlayerReady:
		return "🔌"
	case EventReset:
		return "⏹️"
	case EventLoadFailed:
		return "⚠️"
	default:
		return "❓"
	}
}

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackEnded:
		return "track_ended"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventQueueRefresh:
		return "queue_refresh"
	case EventPlayerReady:
		return "player_ready"
	case EventReset:
		return "reset"
	case EventLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}
