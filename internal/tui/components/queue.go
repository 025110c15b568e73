package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tessro/segue/internal/core"
	"github.com/tessro/segue/internal/tui/styles"
)

// Queue displays the recommendation queue, head first
type Queue struct {
	offset int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// ScrollDown scrolls the queue down
func (q *Queue) ScrollDown() {
	q.offset++
}

// ScrollUp scrolls the queue up
func (q *Queue) ScrollUp() {
	if q.offset > 0 {
		q.offset--
	}
}

// Render renders the up next panel
func (q *Queue) Render(queue []core.SimilarTrack, stats *core.RecommendStats, width, height int, focused bool) string {
	title := styles.PanelTitle("Up Next", focused)

	var content string
	if len(queue) == 0 {
		content = styles.Muted.Render("No recommendations yet")
	} else {
		content = q.renderQueue(queue, width-4, height-6)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.Dim.Render(StatsLine(stats)),
		"",
		content,
	))
}

// StatsLine summarizes a recommendation run.
func StatsLine(stats *core.RecommendStats) string {
	if stats == nil {
		return ""
	}
	line := fmt.Sprintf("%s candidates in %ss",
		humanize.Comma(int64(stats.CandidateCount)),
		humanize.FtoaWithDigits(stats.SearchTime, 2))
	if stats.Mean != nil {
		line += fmt.Sprintf(" · mean %.2f", *stats.Mean)
	}
	if stats.Max != nil {
		line += fmt.Sprintf(" · max %.2f", *stats.Max)
	}
	return line
}

func (q *Queue) renderQueue(queue []core.SimilarTrack, width, maxLines int) string {
	if q.offset >= len(queue) {
		q.offset = 0
	}

	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := q.offset
	end := start + visibleCount
	if end > len(queue) {
		end = len(queue)
	}

	lines := make([]string, 0, end-start+1)

	// "XX. " (4) + "▶ " (2) + " — " (3) + " 100%" (5)
	const overhead = 14

	for i := start; i < end; i++ {
		track := queue[i]

		num := fmt.Sprintf("%2d.", i+1)
		score := fmt.Sprintf("%3.0f%%", track.Similarity*100)

		title, artist := fit(track.Title, track.ArtistNames(), width-overhead, 10)

		var line string
		if i == 0 {
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, artist)) +
				" " + styles.Dim.Render(score)
		} else {
			line = fmt.Sprintf("%s   %s — %s %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist),
				styles.Dim.Render(score))
		}

		lines = append(lines, line)
	}

	if end < len(queue) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(queue)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fit truncates title and artist to share available columns, giving the
// artist at least a third of the space.
func fit(title, artist string, available, minArtist int) (string, string) {
	if len(title)+len(artist) <= available {
		return title, artist
	}

	space := available / 3
	if space < minArtist {
		space = minArtist
	}
	if space > available-minArtist {
		space = available - minArtist
	}
	if len(artist) < space {
		space = len(artist)
	}

	return truncate(title, available-space), truncate(artist, space)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
