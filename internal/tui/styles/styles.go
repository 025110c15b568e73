package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Colors, resolved from the catppuccin palette by Apply.
var (
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor

	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Info    lipgloss.TerminalColor

	Border    lipgloss.TerminalColor
	Surface   lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	TextMuted lipgloss.TerminalColor
	TextDim   lipgloss.TerminalColor
)

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	ErrorText lipgloss.Style
	Selected  lipgloss.Style
)

// Border styles
var (
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	Apply("auto")
}

// Apply rebuilds every style for a theme: "dark" (mocha), "light" (latte)
// or "auto", which lets lipgloss pick from the terminal background.
func Apply(theme string) {
	pick := func(c func(catppuccin.Flavor) catppuccin.Color) lipgloss.TerminalColor {
		switch theme {
		case "dark":
			return lipgloss.Color(c(catppuccin.Mocha).Hex)
		case "light":
			return lipgloss.Color(c(catppuccin.Latte).Hex)
		default:
			return lipgloss.AdaptiveColor{
				Light: c(catppuccin.Latte).Hex,
				Dark:  c(catppuccin.Mocha).Hex,
			}
		}
	}

	Primary = pick(catppuccin.Flavor.Mauve)
	Secondary = pick(catppuccin.Flavor.Teal)
	Accent = pick(catppuccin.Flavor.Peach)
	Success = pick(catppuccin.Flavor.Green)
	Warning = pick(catppuccin.Flavor.Yellow)
	Error = pick(catppuccin.Flavor.Red)
	Info = pick(catppuccin.Flavor.Blue)
	Border = pick(catppuccin.Flavor.Surface2)
	Surface = pick(catppuccin.Flavor.Surface0)
	Text = pick(catppuccin.Flavor.Text)
	TextMuted = pick(catppuccin.Flavor.Subtext0)
	TextDim = pick(catppuccin.Flavor.Overlay0)

	Title = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Dim = lipgloss.NewStyle().Foreground(TextDim)
	Playing = lipgloss.NewStyle().Foreground(Success)
	Paused = lipgloss.NewStyle().Foreground(Warning)
	ErrorText = lipgloss.NewStyle().Foreground(Error)
	Selected = lipgloss.NewStyle().Background(Surface)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
}

// Panel returns the frame style for a panel.
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// Bar renders a horizontal gauge for a value in [0,1].
func Bar(value float64, width int) string {
	filled := int(value*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// Check renders a toggle state.
func Check(on bool) string {
	if on {
		return Playing.Render("[x]")
	}
	return Dim.Render("[ ]")
}
