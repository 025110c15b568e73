package wizard

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/segue/internal/core"
	"github.com/tessro/segue/internal/tui/styles"
)

// SearchFunc is a function that performs a track search.
type SearchFunc func(query string) ([]core.Track, error)

// SearchModel is the bubbletea model for the search wizard.
type SearchModel struct {
	input      textinput.Model
	results    []core.Track
	cursor     int
	searchFunc SearchFunc
	selected   *core.Track
	err        error
	debounce   time.Duration
	lastQuery  string
	searching  bool
	width      int
	height     int
}

// NewSearchModel creates a new search wizard model.
func NewSearchModel(searchFunc SearchFunc) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search for a track to start from..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	return SearchModel{
		input:      ti,
		searchFunc: searchFunc,
		debounce:   300 * time.Millisecond,
		width:      80,
		height:     20,
	}
}

// Init initializes the model.
func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// debounceMsg is sent after the debounce period.
type debounceMsg struct {
	query string
}

// searchResultsMsg contains search results.
type searchResultsMsg struct {
	query   string
	results []core.Track
	err     error
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.cursor < len(m.results) {
				selected := m.results[m.cursor]
				m.selected = &selected
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4

	case debounceMsg:
		if msg.query == m.input.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}
		return m, nil

	case searchResultsMsg:
		if msg.query != m.lastQuery {
			return m, nil
		}
		m.searching = false
		m.results = msg.results
		m.err = msg.err
		m.cursor = 0
		return m, nil
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	if query := m.input.Value(); query != m.lastQuery {
		cmds = append(cmds, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return debounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

// doSearch performs the search.
func (m SearchModel) doSearch(query string) tea.Cmd {
	search := m.searchFunc
	return func() tea.Msg {
		if query == "" {
			return searchResultsMsg{query: query}
		}
		results, err := search(query)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

// View renders the model.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + m.err.Error()))
	case m.searching:
		b.WriteString(styles.Dim.Render("Searching..."))
	case len(m.results) == 0 && m.lastQuery != "":
		b.WriteString(styles.Dim.Render("No results found"))
	default:
		maxResults := m.height - 8
		if maxResults < 5 {
			maxResults = 5
		}
		for i, t := range m.results {
			if i >= maxResults {
				b.WriteString(styles.Dim.Render("  ...and more"))
				break
			}

			line := t.Title + " " + styles.Subtitle.Render(t.ArtistNames())
			if i == m.cursor {
				b.WriteString(styles.Selected.Render("▸ " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("↑/↓ navigate • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected track, or nil if none.
func (m SearchModel) Selected() *core.Track {
	return m.selected
}

// RunSearch runs the search wizard and returns the selected track.
func RunSearch(searchFunc SearchFunc) (*core.Track, error) {
	model := NewSearchModel(searchFunc)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SearchModel).Selected(), nil
}
