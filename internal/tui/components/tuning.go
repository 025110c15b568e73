package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/segue/internal/tuning"
	"github.com/tessro/segue/internal/tui/styles"
)

// RowKind is the control type of a tuning row.
type RowKind int

const (
	RowToggle RowKind = iota
	RowClassification
	RowSimilarity
	RowFeature
)

// TuningRow is one editable line of the tuning panel.
type TuningRow struct {
	Kind    RowKind
	Filter  tuning.FilterKey
	Feature tuning.Feature
}

// IsSlider reports whether the row is adjusted by dragging.
func (r TuningRow) IsSlider() bool {
	return r.Kind == RowSimilarity || r.Kind == RowFeature
}

// Value returns the slider position for the row in cfg.
func (r TuningRow) Value(cfg tuning.Config) float64 {
	switch r.Kind {
	case RowSimilarity:
		return cfg.Total.Similarity
	case RowFeature:
		return cfg.Features[r.Feature]
	}
	return 0
}

var tuningRows = func() []TuningRow {
	rows := []TuningRow{
		{Kind: RowToggle, Filter: tuning.FilterSameGenre},
		{Kind: RowToggle, Filter: tuning.FilterSameDecade},
		{Kind: RowClassification},
		{Kind: RowSimilarity},
	}
	for _, f := range tuning.Features() {
		rows = append(rows, TuningRow{Kind: RowFeature, Feature: f})
	}
	return rows
}()

// Tuning displays the filter and weight controls
type Tuning struct {
	cursor int
	offset int
}

// NewTuning creates a new Tuning component
func NewTuning() *Tuning {
	return &Tuning{}
}

// SelectNext moves the cursor down
func (t *Tuning) SelectNext() {
	if t.cursor < len(tuningRows)-1 {
		t.cursor++
	}
}

// SelectPrev moves the cursor up
func (t *Tuning) SelectPrev() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// Row returns the row under the cursor.
func (t *Tuning) Row() TuningRow {
	return tuningRows[t.cursor]
}

// Render renders the tuning panel. dragging marks an uncommitted slider.
func (t *Tuning) Render(cfg tuning.Config, dragging bool, width, height int, focused bool) string {
	title := styles.PanelTitle("Tuning", focused)

	visible := height - 4
	if visible < 1 {
		visible = 1
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+visible {
		t.offset = t.cursor - visible + 1
	}

	end := t.offset + visible
	if end > len(tuningRows) {
		end = len(tuningRows)
	}

	lines := make([]string, 0, end-t.offset+1)
	lines = append(lines, title, "")
	for i := t.offset; i < end; i++ {
		line := t.renderRow(tuningRows[i], cfg, width-4)
		if i == t.cursor && focused {
			marker := "> "
			if dragging && tuningRows[i].IsSlider() {
				marker = styles.Highlight.Render("~ ")
			}
			line = marker + styles.Selected.Render(line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

const labelWidth = 17

func (t *Tuning) renderRow(row TuningRow, cfg tuning.Config, width int) string {
	label := func(s string) string {
		return styles.Label.Width(labelWidth).Render(s)
	}

	switch row.Kind {
	case RowToggle:
		on := cfg.Filters.SameGenre
		if row.Filter == tuning.FilterSameDecade {
			on = cfg.Filters.SameDecade
		}
		return label(string(row.Filter)) + styles.Check(on)

	case RowClassification:
		return label("genre model") + styles.Title.Render(string(cfg.Filters.GenreClassification))

	case RowSimilarity:
		return label("similarity") + slider(cfg.Total.Similarity, width-labelWidth-12) +
			styles.Dim.Render(fmt.Sprintf(" pop %.2f", cfg.Total.Popularity))

	default:
		return label(row.Feature.String()) + slider(cfg.Features[row.Feature], width-labelWidth-12)
	}
}

func slider(v float64, width int) string {
	if width < 5 {
		width = 5
	}
	return styles.Bar(v, width) + fmt.Sprintf(" %.2f", v)
}
