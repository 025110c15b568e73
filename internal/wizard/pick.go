package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/tessro/segue/internal/core"
)

// maxPickOptions caps the picker list; search results past it are rarely
// what the user meant.
const maxPickOptions = 15

// TrackLabel formats a track for a picker row.
func TrackLabel(t core.Track) string {
	label := fmt.Sprintf("%s — %s", t.Title, t.ArtistNames())
	if year := t.Album.Year(); year > 0 {
		label = fmt.Sprintf("%s (%d)", label, year)
	}
	return label
}

// PickTrack asks the user to choose one of several matches.
func PickTrack(tracks []core.Track) (*core.Track, error) {
	if len(tracks) > maxPickOptions {
		tracks = tracks[:maxPickOptions]
	}

	options := make([]huh.Option[int], 0, len(tracks))
	for i, t := range tracks {
		options = append(options, huh.NewOption(TrackLabel(t), i))
	}

	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Several tracks match").
				Description("Recommendations will follow from the track you pick").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return &tracks[selected], nil
}
