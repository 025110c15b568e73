package wizard

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/tessro/segue/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled    bool
	searchFunc SearchFunc
}

// NewInteractive creates a new interactive handler.
func NewInteractive(searchFunc SearchFunc) *Interactive {
	return &Interactive{
		enabled:    true,
		searchFunc: searchFunc,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptSearch launches the search wizard if interactive mode is available.
// Returns the selected track, or nil if cancelled or not interactive.
func (i *Interactive) PromptSearch() (*core.Track, error) {
	if !i.CanInteract() || i.searchFunc == nil {
		return nil, nil
	}
	return RunSearch(i.searchFunc)
}

// Choose resolves a result list to one track. A single result is taken
// as-is; several prompt a picker when interactive, otherwise the first wins.
func (i *Interactive) Choose(tracks []core.Track) (*core.Track, error) {
	switch {
	case len(tracks) == 0:
		return nil, nil
	case len(tracks) == 1 || !i.CanInteract():
		return &tracks[0], nil
	}
	return PickTrack(tracks)
}

// NeedsTrack returns true if neither a query nor an id was given.
func NeedsTrack(args []string, mbid string) bool {
	return len(args) == 0 && mbid == ""
}
