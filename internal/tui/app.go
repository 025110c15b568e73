package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/tessro/segue/internal/browser"
	"github.com/tessro/segue/internal/core"
	"github.com/tessro/segue/internal/tui/components"
	"github.com/tessro/segue/internal/tui/styles"
	"github.com/tessro/segue/internal/tuning"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
	PanelTuning
	PanelHistory

	numPanels
)

const (
	searchDebounce = 300 * time.Millisecond
	sliderStep     = 0.05
	errorDuration  = 5 * time.Second
)

// Session is the controller surface the UI drives.
type Session interface {
	LoadAndPlay(t core.Track)
	Skip()
	Reset()
	Minimize()
	ToggleMaximize()
	TogglePlayback()
	Snapshot() core.SessionState
	Subscribe() <-chan core.SessionState
	Unsubscribe(ch <-chan core.SessionState)
}

// App holds the TUI application dependencies
type App struct {
	session     Session
	catalog     core.Catalog
	tuning      *tuning.Store
	refreshRate time.Duration
	log         logrus.FieldLogger
	openURL     func(string) error
}

// NewApp creates a new TUI application
func NewApp(session Session, catalog core.Catalog, store *tuning.Store, refreshRate time.Duration, log logrus.FieldLogger) *App {
	if refreshRate <= 0 {
		refreshRate = time.Second
	}
	return &App{
		session:     session,
		catalog:     catalog,
		tuning:      store,
		refreshRate: refreshRate,
		log:         log,
		openURL:     browser.Open,
	}
}

// Model is the main TUI model
type Model struct {
	app          *App
	keys         keyMap
	help         help.Model
	width        int
	height       int
	focusedPanel Panel

	// State
	sub      <-chan core.SessionState
	state    core.SessionState
	history  []components.HistoryEntry
	known    map[string]core.Track
	tuning   tuning.Config
	dragging bool

	// Components
	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	tuningView  *components.Tuning
	historyView *components.History

	// Overlays
	showHelp bool

	// Search state. An empty query lists the top tracks.
	showSearch    bool
	searchInput   textinput.Model
	searchResults []core.Track
	topTracks     []core.Track
	searchCursor  int
	searching     bool
	lastQuery     string
	searchErr     error

	// Error handling
	lastError   error
	errorExpiry time.Time
	notice      string

	quitting bool
}

// NewModel creates a new TUI model subscribed to the session.
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search tracks..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		app:          app,
		keys:         newKeyMap(),
		help:         help.New(),
		focusedPanel: PanelNowPlaying,
		sub:          app.session.Subscribe(),
		state:        app.session.Snapshot(),
		known:        make(map[string]core.Track),
		tuning:       app.tuning.Current(),
		nowPlaying:   components.NewNowPlaying(),
		queueView:    components.NewQueue(),
		tuningView:   components.NewTuning(),
		historyView:  components.NewHistory(),
		searchInput:  ti,
	}
}

// Messages
type tickMsg time.Time
type stateMsg core.SessionState
type errMsg error
type noticeMsg string

type topTracksMsg struct {
	tracks []core.Track
	err    error
}

type searchDebounceMsg struct{ query string }
type searchResultsMsg struct {
	query  string
	tracks []core.Track
	err    error
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForState blocks on the next published snapshot. A closed
// subscription ends the wait chain.
func waitForState(ch <-chan core.SessionState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) fetchTopTracks() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tracks, err := m.app.catalog.TopTracks(ctx, 1)
		return topTracksMsg{tracks: tracks, err: err}
	}
}

func (m Model) doSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if query == "" {
			return searchResultsMsg{query: query}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tracks, err := m.app.catalog.Search(ctx, query)
		return searchResultsMsg{query: query, tracks: tracks, err: err}
	}
}

func (m Model) copySource() tea.Cmd {
	src := m.state.Source
	return func() tea.Msg {
		if src == nil {
			return errMsg(errors.New("nothing to copy"))
		}
		if err := clipboard.WriteAll(src.URL()); err != nil {
			return errMsg(err)
		}
		return noticeMsg("copied " + src.URL())
	}
}

func (m Model) openSource() tea.Cmd {
	src := m.state.Source
	open := m.app.openURL
	return func() tea.Msg {
		if src == nil {
			return errMsg(errors.New("nothing to open"))
		}
		if err := open(src.URL()); err != nil {
			return errMsg(err)
		}
		return noticeMsg("opened " + src.URL())
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		waitForState(m.sub),
		m.fetchTopTracks(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
			m.notice = ""
		}
		return m, m.tick()

	case stateMsg:
		m.applyState(core.SessionState(msg))
		return m, waitForState(m.sub)

	case topTracksMsg:
		if msg.err != nil {
			return m.setError(msg.err), nil
		}
		m.topTracks = msg.tracks
		m.remember(msg.tracks...)
		return m, nil

	case errMsg:
		return m.setError(msg), nil

	case noticeMsg:
		m.notice = string(msg)
		m.errorExpiry = time.Now().Add(errorDuration)
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}

	case searchResultsMsg:
		if msg.query != m.lastQuery {
			return m, nil
		}
		m.searching = false
		m.searchResults = msg.tracks
		m.searchErr = msg.err
		m.searchCursor = 0
		m.remember(msg.tracks...)
		return m, nil
	}

	// Forward other messages to textinput when search is active
	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m Model) setError(err error) Model {
	if err == nil {
		return m
	}
	m.app.log.WithError(err).Debug("ui error")
	m.lastError = err
	m.errorExpiry = time.Now().Add(errorDuration)
	return m
}

func (m *Model) applyState(s core.SessionState) {
	if s.Track != nil {
		m.remember(*s.Track)
	}
	for _, t := range s.Queue {
		m.remember(t.Track)
	}
	m.syncHistory(s)
	m.state = s
}

func (m *Model) remember(tracks ...core.Track) {
	for _, t := range tracks {
		m.known[t.MBID] = t
	}
}

// syncHistory mirrors the session history, stamping newly listened ids with
// the time they were first seen.
func (m *Model) syncHistory(s core.SessionState) {
	now := time.Now()
	switch {
	case s.HistoryLength == len(m.history):
		return
	case s.HistoryLength > len(m.history) && len(m.history) > 0:
		added := s.HistoryLength - len(m.history)
		if added > len(s.History) {
			added = len(s.History)
		}
		fresh := make([]components.HistoryEntry, 0, added+len(m.history))
		for _, id := range s.History[:added] {
			fresh = append(fresh, m.entry(id, now))
		}
		m.history = append(fresh, m.history...)
	default:
		m.history = make([]components.HistoryEntry, 0, len(s.History))
		for _, id := range s.History {
			m.history = append(m.history, m.entry(id, now))
		}
	}
}

func (m *Model) entry(id string, at time.Time) components.HistoryEntry {
	e := components.HistoryEntry{MBID: id, PlayedAt: at}
	if t, ok := m.known[id]; ok {
		e.Track = &t
	}
	return e
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.endGesture()
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.endGesture()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.endGesture()
		m.showSearch = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchResults = nil
		m.searchCursor = 0
		m.lastQuery = ""
		m.searchErr = nil
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NextPanel):
		m.endGesture()
		m.focusedPanel = (m.focusedPanel + 1) % numPanels
		return m, nil

	case key.Matches(msg, m.keys.PrevPanel):
		m.endGesture()
		m.focusedPanel = (m.focusedPanel + numPanels - 1) % numPanels
		return m, nil

	case key.Matches(msg, m.keys.TogglePlayback):
		m.app.session.TogglePlayback()
		return m, nil

	case key.Matches(msg, m.keys.Skip):
		m.app.session.Skip()
		return m, nil

	case key.Matches(msg, m.keys.Maximize):
		m.app.session.ToggleMaximize()
		return m, nil

	case key.Matches(msg, m.keys.Minimize):
		m.endGesture()
		m.app.session.Minimize()
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.app.session.Reset()
		return m, nil

	case key.Matches(msg, m.keys.ResetTuning):
		m.dragging = false
		m.app.tuning.Reset()
		m.tuning = m.app.tuning.Current()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copySource()

	case key.Matches(msg, m.keys.Open):
		return m, m.openSource()
	}

	switch m.focusedPanel {
	case PanelQueue:
		switch {
		case key.Matches(msg, m.keys.Down):
			m.queueView.ScrollDown()
		case key.Matches(msg, m.keys.Up):
			m.queueView.ScrollUp()
		}
	case PanelTuning:
		return m.handleTuningKeyPress(msg)
	}

	return m, nil
}

// handleTuningKeyPress drives the tuning panel. Sliders move the working
// value and commit when the row is left or enter is pressed.
func (m Model) handleTuningKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.app.tuning
	row := m.tuningView.Row()

	var err error
	switch {
	case key.Matches(msg, m.keys.Down):
		m.endGesture()
		m.tuningView.SelectNext()

	case key.Matches(msg, m.keys.Up):
		m.endGesture()
		m.tuningView.SelectPrev()

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		if !row.IsSlider() {
			break
		}
		delta := sliderStep
		if key.Matches(msg, m.keys.Left) {
			delta = -sliderStep
		}
		v := clamp(row.Value(store.Current()) + delta)
		if row.Kind == components.RowSimilarity {
			err = store.SetSimilarity(v)
		} else {
			err = store.SetFeatureWeight(row.Feature, v)
		}
		if err == nil {
			m.dragging = true
		}

	case key.Matches(msg, m.keys.Genre):
		err = m.cycleGenre()

	case key.Matches(msg, m.keys.Select):
		switch row.Kind {
		case components.RowToggle:
			err = store.ToggleFilter(row.Filter)
		case components.RowClassification:
			err = m.cycleGenre()
		default:
			if m.dragging {
				m.endGesture()
			}
		}
	}

	m.tuning = store.Current()
	if err != nil {
		return m.setError(err), nil
	}
	return m, nil
}

func (m *Model) cycleGenre() error {
	next := tuning.Dortmund
	if m.app.tuning.Current().Filters.GenreClassification == tuning.Dortmund {
		next = tuning.Rosamerica
	}
	return m.app.tuning.SetGenreClassification(next)
}

// endGesture commits a pending slider drag.
func (m *Model) endGesture() {
	if !m.dragging {
		return
	}
	m.dragging = false
	m.app.tuning.EndGesture()
	m.tuning = m.app.tuning.Current()
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (m Model) searchList() []core.Track {
	if m.searchInput.Value() == "" {
		return m.topTracks
	}
	return m.searchResults
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	list := m.searchList()

	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		if m.searchCursor < len(list) {
			track := list[m.searchCursor]
			m.showSearch = false
			m.searchInput.Blur()
			m.app.session.LoadAndPlay(track)
		}
		return m, nil

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < len(list)-1 {
			m.searchCursor++
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	if query := m.searchInput.Value(); query != m.lastQuery {
		m.searchCursor = 0
		if query == "" {
			m.lastQuery = ""
			m.searchResults = nil
			m.searching = false
		} else {
			cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
				return searchDebounceMsg{query: query}
			}))
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showSearch {
		return m.renderSearch()
	}

	statusBar := m.renderStatusBar()
	mainHeight := m.height - lipgloss.Height(statusBar)

	if m.state.IsMaximized {
		nowPlaying := m.nowPlaying.Render(&m.state, m.width-2, mainHeight-2, true)
		return lipgloss.JoinVertical(lipgloss.Left, nowPlaying, statusBar)
	}

	// Left: Now Playing (top), Up Next (bottom)
	// Right: Tuning (top), History (bottom)
	leftWidth := m.width * 55 / 100
	rightWidth := m.width - leftWidth - 4
	topHeight := mainHeight * 45 / 100
	bottomHeight := mainHeight - topHeight - 4

	nowPlaying := m.nowPlaying.Render(&m.state, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	queueView := m.queueView.Render(m.state.Queue, m.state.Stats, leftWidth-2, bottomHeight, m.focusedPanel == PanelQueue)
	tuningView := m.tuningView.Render(m.tuning, m.dragging, rightWidth, topHeight-2, m.focusedPanel == PanelTuning)
	historyView := m.historyView.Render(m.history, rightWidth, bottomHeight, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, queueView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, tuningView, historyView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderStatusBar() string {
	status := m.help.ShortHelpView(m.keys.ShortHelp())

	switch {
	case m.lastError != nil:
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	case m.notice != "":
		status = styles.Playing.Render(m.notice)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Segue - Keyboard Shortcuts"

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(title),
		styles.Dim.Render(strings.Repeat("═", len(title))),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(body))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	heading := "Search"
	if m.searchInput.Value() == "" {
		heading = "Top tracks"
	}
	b.WriteString(styles.Highlight.Render(heading))
	b.WriteString("\n\n")

	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	list := m.searchList()
	switch {
	case m.searchErr != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + m.searchErr.Error()))
	case m.searching:
		b.WriteString(styles.Dim.Render("Searching..."))
	case len(list) == 0 && m.searchInput.Value() != "" && m.lastQuery != "":
		b.WriteString(styles.Dim.Render("No results found"))
	default:
		const maxResults = 10
		start := 0
		if m.searchCursor >= maxResults {
			start = m.searchCursor - maxResults + 1
		}
		for i := start; i < len(list) && i < start+maxResults; i++ {
			track := list[i]
			line := track.Title + " " + styles.Subtitle.Render(track.ArtistNames())
			if i == m.searchCursor {
				b.WriteString(styles.Selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(list) > start+maxResults {
			b.WriteString(styles.Dim.Render("  ...and more"))
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("↑/↓:nav  Enter:play  Esc:close"))

	content := lipgloss.NewStyle().
		Width(64).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application and blocks until the user quits.
func Run(app *App) error {
	model := NewModel(app)
	defer app.session.Unsubscribe(model.sub)

	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
