package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tessro/segue/internal/core"
	"github.com/tessro/segue/internal/tui/styles"
)

// NowPlaying displays the current track and session phase
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state *core.SessionState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasTrack() {
		content = styles.Muted.Render("Nothing playing. Press / to pick a track.")
	} else {
		content = n.renderTrack(state, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
		"",
		n.renderStatus(state),
	))
}

func (n *NowPlaying) renderTrack(state *core.SessionState, width int) string {
	track := state.Track

	icon := styles.StatusIcon(state.IsPlaying)
	if state.Phase == core.PhaseLoading {
		icon = styles.Dim.Render("…")
	}
	title := styles.Title.Width(width - 4).Render(track.Title)

	artist := styles.Subtitle.Render(track.ArtistNames())

	album := track.AlbumName()
	if year := track.Album.Year(); year > 0 {
		album = fmt.Sprintf("%s (%d)", album, year)
	}

	lines := []string{
		icon + " " + title,
		"  " + artist,
	}
	if album != "" {
		lines = append(lines, "  "+styles.Dim.Render(album))
	}

	var meta []string
	if track.Duration > 0 {
		meta = append(meta, formatDuration(track.Duration))
	}
	if genre := track.GenreRosamerica; genre != "" {
		meta = append(meta, genre)
	}
	if track.Submissions > 0 {
		meta = append(meta, humanize.Comma(int64(track.Submissions))+" listens")
	}
	if len(meta) > 0 {
		line := ""
		for i, m := range meta {
			if i > 0 {
				line += " · "
			}
			line += m
		}
		lines = append(lines, "", "  "+styles.Muted.Render(line))
	}

	if state.Source != nil {
		lines = append(lines, "  "+styles.Dim.Render(state.Source.URL()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (n *NowPlaying) renderStatus(state *core.SessionState) string {
	phase := state.Phase.String()
	switch state.Phase {
	case core.PhasePlaying:
		phase = styles.Playing.Render(phase)
	case core.PhasePaused, core.PhaseEnded:
		phase = styles.Paused.Render(phase)
	default:
		phase = styles.Dim.Render(phase)
	}

	player := styles.ErrorText.Render("player starting")
	if state.Ready {
		player = styles.Playing.Render("player ready")
	}

	status := phase + styles.Dim.Render("  ·  ") + player
	if next := state.UpNext(); next != nil {
		status += styles.Dim.Render("  ·  next: ") + next.Title
	}
	return status
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
