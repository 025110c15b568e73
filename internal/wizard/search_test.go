package wizard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/segue/internal/core"
)

func results(ids ...string) []core.Track {
	out := make([]core.Track, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.Track{MBID: id, Title: "Song " + id})
	}
	return out
}

func update(m SearchModel, msg tea.Msg) SearchModel {
	next, _ := m.Update(msg)
	return next.(SearchModel)
}

func TestSearchModelSelect(t *testing.T) {
	m := NewSearchModel(func(string) ([]core.Track, error) { return nil, nil })
	m.lastQuery = "song"

	m = update(m, searchResultsMsg{query: "song", results: results("a", "b", "c")})
	m = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Selected() == nil {
		t.Fatal("expected a selection")
	}
	if m.Selected().MBID != "b" {
		t.Errorf("selected %q, want b", m.Selected().MBID)
	}
}

func TestSearchModelIgnoresStaleResults(t *testing.T) {
	m := NewSearchModel(nil)
	m.lastQuery = "new"

	m = update(m, searchResultsMsg{query: "old", results: results("x")})

	if len(m.results) != 0 {
		t.Errorf("stale results applied: %v", m.results)
	}
}

func TestSearchModelDebounce(t *testing.T) {
	var queries []string
	m := NewSearchModel(func(q string) ([]core.Track, error) {
		queries = append(queries, q)
		return results("a"), nil
	})
	m.debounce = time.Millisecond
	m.input.SetValue("abc")

	// A debounce for an outdated query does nothing.
	m = update(m, debounceMsg{query: "ab"})
	if m.searching {
		t.Fatal("outdated debounce started a search")
	}

	next, cmd := m.Update(debounceMsg{query: "abc"})
	m = next.(SearchModel)
	if !m.searching || cmd == nil {
		t.Fatal("expected a search command")
	}
	m = update(m, cmd())

	if len(queries) != 1 || queries[0] != "abc" {
		t.Errorf("queries = %v", queries)
	}
	if len(m.results) != 1 || m.searching {
		t.Errorf("results not applied: %+v", m.results)
	}
}

func TestNeedsTrack(t *testing.T) {
	tests := []struct {
		args []string
		mbid string
		want bool
	}{
		{nil, "", true},
		{[]string{"query"}, "", false},
		{nil, "abc", false},
	}
	for _, tt := range tests {
		if got := NeedsTrack(tt.args, tt.mbid); got != tt.want {
			t.Errorf("NeedsTrack(%v, %q) = %v, want %v", tt.args, tt.mbid, got, tt.want)
		}
	}
}

func TestChooseWithoutTerminal(t *testing.T) {
	i := NewInteractive(nil)
	i.SetEnabled(false)

	got, err := i.Choose(results("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.MBID != "a" {
		t.Errorf("Choose = %v, want first result", got)
	}

	got, err = i.Choose(nil)
	if err != nil || got != nil {
		t.Errorf("Choose(nil) = %v, %v", got, err)
	}
}

func TestTrackLabel(t *testing.T) {
	tr := core.Track{Title: "Blue", Artists: []core.Artist{{Name: "A"}, {Name: "B"}}}
	if got, want := TrackLabel(tr), "Blue — A, B"; got != want {
		t.Errorf("TrackLabel = %q, want %q", got, want)
	}
}
