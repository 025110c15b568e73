package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/segue/internal/core"
	segueerrors "github.com/tessro/segue/internal/errors"
	"github.com/tessro/segue/internal/tail"
	"github.com/tessro/segue/internal/tuning"
)

func parseTuning(t *testing.T, args ...string) (tuning.Config, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	var f tuningFlags
	f.register(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return f.apply(cmd, tuning.Default())
}

func TestTuningFlagsOnlyOverrideWhatIsSet(t *testing.T) {
	cfg, err := parseTuning(t)
	require.NoError(t, err)
	assert.Equal(t, tuning.Default(), cfg)

	cfg, err = parseTuning(t,
		"--same-decade=false",
		"--genre-model", "Dortmund",
		"--similarity", "0.9",
		"--exclude-artist", "Nickelback",
		"-w", "happiness=1",
		"-w", "sadness=0",
	)
	require.NoError(t, err)
	assert.True(t, cfg.Filters.SameGenre)
	assert.False(t, cfg.Filters.SameDecade)
	assert.Equal(t, tuning.Dortmund, cfg.Filters.GenreClassification)
	assert.InDelta(t, 0.9, cfg.Total.Similarity, 1e-9)
	assert.InDelta(t, 0.1, cfg.Total.Popularity, 1e-9)
	assert.Equal(t, []string{"Nickelback"}, cfg.Filters.ExcludeArtists)
	assert.Equal(t, 1.0, cfg.Features[tuning.Happiness])
	assert.Equal(t, 0.0, cfg.Features[tuning.Sadness])
}

func TestTuningFlagsRejectBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"similarity out of range", []string{"--similarity", "1.5"}},
		{"weight without value", []string{"-w", "happiness"}},
		{"unknown feature", []string{"-w", "loudness=0.3"}},
		{"weight out of range", []string{"-w", "happiness=2"}},
		{"unknown genre model", []string{"--genre-model", "discogs"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTuning(t, tt.args...)
			assert.ErrorIs(t, err, segueerrors.ErrInvalidConfig)
		})
	}
}

func TestParseConfigValue(t *testing.T) {
	v, err := parseConfigValue("api.timeout", "15")
	require.NoError(t, err)
	assert.Equal(t, 15, v)

	v, err = parseConfigValue("recommend.similarity", "0.8")
	require.NoError(t, err)
	assert.Equal(t, 0.8, v)

	v, err = parseConfigValue("player.video", "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = parseConfigValue("recommend.exclude_artists", "A, B,,C")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, v)

	v, err = parseConfigValue("api.base_url", "http://x/")
	require.NoError(t, err)
	assert.Equal(t, "http://x/", v)

	_, err = parseConfigValue("api.max_retries", "many")
	assert.Error(t, err)
}

func TestWriteTracks(t *testing.T) {
	date := time.Date(1998, 4, 20, 0, 0, 0, 0, time.UTC)
	tracks := []core.Track{{
		MBID:        "m1",
		Title:       "Teardrop",
		Artists:     []core.Artist{{Name: "Massive Attack"}},
		Album:       &core.Album{Name: "Mezzanine", Date: &date},
		Duration:    5*time.Minute + 30*time.Second,
		Submissions: 12345,
	}}

	var buf bytes.Buffer
	writeTracks(&buf, tracks)

	out := buf.String()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Teardrop")
	assert.Contains(t, out, "Mezzanine")
	assert.Contains(t, out, "1998")
	assert.Contains(t, out, "5:30")
	assert.Contains(t, out, "12,345")
}

func TestStatsLine(t *testing.T) {
	mean := 0.5
	line := statsLine(core.RecommendStats{CandidateCount: 1500, SearchTime: 0.25, Mean: &mean})
	assert.Equal(t, "1,500 candidates in 0.25s, mean 0.500", line)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "3:05", FormatDuration(185*time.Second))
	assert.Equal(t, "1:01:01", FormatDuration(3661*time.Second))
}

type stateFeed struct {
	ch chan core.SessionState
}

func (f *stateFeed) Subscribe() <-chan core.SessionState  { return f.ch }
func (f *stateFeed) Unsubscribe(<-chan core.SessionState) {}

func runFollow(t *testing.T, states ...core.SessionState) error {
	t.Helper()
	feed := &stateFeed{ch: make(chan core.SessionState, len(states))}
	for _, s := range states {
		feed.ch <- s
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w := tail.NewWatcher(feed)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	return follow(ctx, w, tail.NewFormatter(tail.WithEmoji(false)), errCh, time.Minute)
}

func TestFollowStopsWhenStartingTrackCannotPlay(t *testing.T) {
	err := runFollow(t,
		core.SessionState{Ready: true},
		core.SessionState{Ready: true, Phase: core.PhaseLoading},
		core.SessionState{Ready: true, LoadFailures: 1},
	)
	assert.ErrorIs(t, err, segueerrors.ErrSourceResolution)
	assert.NotEmpty(t, segueerrors.GetSuggestion(err))
}

func TestFollowContinuesPastSkippedTrack(t *testing.T) {
	x := &core.Track{MBID: "x", Title: "X"}
	err := runFollow(t,
		core.SessionState{Ready: true, Track: x, Phase: core.PhasePlaying},
		core.SessionState{Ready: true, Track: x, Phase: core.PhasePlaying, LoadFailures: 1},
		core.SessionState{Ready: true, Track: x, Phase: core.PhaseEnded},
	)
	assert.NoError(t, err)
}
