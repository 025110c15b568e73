package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit           key.Binding
	Help           key.Binding
	Search         key.Binding
	NextPanel      key.Binding
	PrevPanel      key.Binding
	TogglePlayback key.Binding
	Skip           key.Binding
	Maximize       key.Binding
	Minimize       key.Binding
	Reset          key.Binding
	ResetTuning    key.Binding
	Copy           key.Binding
	Open           key.Binding
	Up             key.Binding
	Down           key.Binding
	Left           key.Binding
	Right          key.Binding
	Select         key.Binding
	Genre          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextPanel:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
		TogglePlayback: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Skip:           key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next recommendation")),
		Maximize:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "maximize player")),
		Minimize:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "minimize player")),
		Reset:          key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "stop and clear session")),
		ResetTuning:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset tuning")),
		Copy:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy source url")),
		Open:           key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open source in browser")),
		Up:             key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:           key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Left:           key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "decrease")),
		Right:          key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "increase")),
		Select:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle / commit")),
		Genre:          key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "switch genre model")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help, k.Search, k.TogglePlayback, k.Skip, k.NextPanel}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help, k.Search, k.NextPanel, k.PrevPanel},
		{k.TogglePlayback, k.Skip, k.Maximize, k.Minimize, k.Reset, k.Copy, k.Open},
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Genre, k.ResetTuning},
	}
}
