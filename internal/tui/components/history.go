package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/segue/internal/core"
	"github.com/tessro/segue/internal/tui/styles"
)

// HistoryEntry is one listened track. Track is nil when only the id is
// known.
type HistoryEntry struct {
	MBID     string
	Track    *core.Track
	PlayedAt time.Time
}

// History displays recently played tracks
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []HistoryEntry, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("History (%d)", len(entries)), focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(entries []HistoryEntry, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	// icon (2) + " — " (3) + time padding (8)
	const overhead = 13

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		timeAgo := formatTimeAgo(entry.PlayedAt)
		timeWidth := len(timeAgo)

		name, artist := entry.MBID, ""
		if entry.Track != nil {
			name, artist = entry.Track.Title, entry.Track.ArtistNames()
		}
		title, artist := fit(name, artist, width-overhead-timeWidth, 8)

		trackInfo := title
		infoLen := len(title)
		if artist != "" {
			trackInfo = fmt.Sprintf("%s — %s", title, styles.Muted.Render(artist))
			infoLen += 3 + len(artist)
		}

		padding := width - 2 - infoLen - timeWidth
		if padding < 1 {
			padding = 1
		}

		line := fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render("✓"),
			trackInfo,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(timeAgo))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
