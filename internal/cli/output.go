package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/tessro/segue/internal/core"
)

// Table provides a simple table formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// TruncateString truncates a string to maxLen, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatDuration formats a duration as mm:ss or hh:mm:ss.
func FormatDuration(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func yearString(t core.Track) string {
	if y := t.Album.Year(); y > 0 {
		return strconv.Itoa(y)
	}
	return ""
}

// writeTracks prints a track listing.
func writeTracks(w io.Writer, tracks []core.Track) {
	table := NewTableWriter(w, "MBID", "TITLE", "ARTIST", "ALBUM", "YEAR", "LENGTH", "LISTENS")
	for _, t := range tracks {
		table.Row(
			t.MBID,
			TruncateString(t.Title, 40),
			TruncateString(t.ArtistNames(), 30),
			TruncateString(t.AlbumName(), 30),
			yearString(t),
			FormatDuration(t.Duration),
			humanize.Comma(int64(t.Submissions)),
		)
	}
	table.Flush()
}

// writeSimilar prints a recommendation listing, most similar first.
func writeSimilar(w io.Writer, similar []core.SimilarTrack) {
	table := NewTableWriter(w, "#", "SIMILARITY", "MBID", "TITLE", "ARTIST", "YEAR")
	for i, t := range similar {
		table.Row(
			strconv.Itoa(i+1),
			fmt.Sprintf("%.3f", t.Similarity),
			t.MBID,
			TruncateString(t.Title, 40),
			TruncateString(t.ArtistNames(), 30),
			yearString(t.Track),
		)
	}
	table.Flush()
}

// statsLine summarizes a recommendation run.
func statsLine(s core.RecommendStats) string {
	line := fmt.Sprintf("%s candidates in %ss",
		humanize.Comma(int64(s.CandidateCount)),
		humanize.FtoaWithDigits(s.SearchTime, 3))
	for _, stat := range []struct {
		name string
		v    *float64
	}{{"mean", s.Mean}, {"std", s.Std}, {"p95", s.P95}, {"max", s.Max}} {
		if stat.v != nil {
			line += fmt.Sprintf(", %s %.3f", stat.name, *stat.v)
		}
	}
	return line
}
