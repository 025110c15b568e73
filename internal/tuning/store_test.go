package tuning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	segueerrors "github.com/tessro/segue/internal/errors"
)

type recorder struct {
	commits []Config
}

func (r *recorder) observe(c Config) {
	r.commits = append(r.commits, c)
}

func newRecordedStore() (*Store, *recorder) {
	s := NewStore(Default())
	r := &recorder{}
	s.Subscribe(r.observe)
	return s, r
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.True(t, c.Filters.SameGenre)
	assert.True(t, c.Filters.SameDecade)
	assert.Equal(t, Rosamerica, c.Filters.GenreClassification)
	assert.Equal(t, 0.7, c.Total.Similarity)
	assert.Equal(t, 0.3, c.Total.Popularity)
	for _, f := range Features() {
		assert.Equal(t, DefaultFeatureWeight, c.Features[f], f.String())
	}
	require.NoError(t, c.Validate())
}

func TestToggleFilterPropagatesSynchronously(t *testing.T) {
	s, r := newRecordedStore()

	require.NoError(t, s.ToggleFilter(FilterSameGenre))

	require.Len(t, r.commits, 1)
	assert.False(t, r.commits[0].Filters.SameGenre)
	assert.True(t, r.commits[0].Filters.SameDecade)

	require.NoError(t, s.ToggleFilter(FilterSameDecade))
	require.Len(t, r.commits, 2)
	assert.False(t, r.commits[1].Filters.SameDecade)
}

func TestToggleFilterUnknownKey(t *testing.T) {
	s, r := newRecordedStore()
	err := s.ToggleFilter("same_mood")
	assert.ErrorIs(t, err, segueerrors.ErrInvalidConfig)
	assert.Empty(t, r.commits)
}

func TestDragCommitsOnRelease(t *testing.T) {
	s, r := newRecordedStore()
	require.NoError(t, s.SetSimilarity(0.5))
	require.NoError(t, s.SetSimilarity(0.6))
	require.NoError(t, s.SetSimilarity(0.7))
	assert.Empty(t, r.commits, "drag must not propagate")

	s.EndGesture()

	require.Len(t, r.commits, 1)
	assert.Equal(t, TotalWeights{Similarity: 0.7, Popularity: 0.3}, r.commits[0].Total)
}

func TestWeightsAlwaysSumToOne(t *testing.T) {
	s, r := newRecordedStore()
	for _, v := range []float64{0, 0.1, 0.33333, 0.5, 0.66667, 0.99999, 1} {
		require.NoError(t, s.SetSimilarity(v))
		s.EndGesture()
		require.NoError(t, s.SetPopularity(v))
		s.EndGesture()
	}
	for _, c := range r.commits {
		assert.InDelta(t, 1, c.Total.Similarity+c.Total.Popularity, 1e-4)
		require.NoError(t, c.Validate())
	}
}

func TestSetPopularityDerivesSimilarity(t *testing.T) {
	s, _ := newRecordedStore()
	require.NoError(t, s.SetPopularity(0.25))
	assert.Equal(t, TotalWeights{Similarity: 0.75, Popularity: 0.25}, s.Current().Total)
}

func TestSetWeightRejectsOutOfRange(t *testing.T) {
	s, _ := newRecordedStore()
	assert.ErrorIs(t, s.SetSimilarity(1.2), segueerrors.ErrInvalidConfig)
	assert.ErrorIs(t, s.SetPopularity(-0.1), segueerrors.ErrInvalidConfig)
	assert.ErrorIs(t, s.SetFeatureWeight(Happiness, 2), segueerrors.ErrInvalidConfig)
	assert.ErrorIs(t, s.SetFeatureWeight(NumFeatures, 0.2), segueerrors.ErrInvalidConfig)
	assert.Equal(t, Default(), s.Current())
}

func TestFeatureWeightCommitsOnGestureEnd(t *testing.T) {
	s, r := newRecordedStore()
	require.NoError(t, s.SetFeatureWeight(Danceability, 0.9))
	assert.Empty(t, r.commits)

	s.EndGesture()
	require.Len(t, r.commits, 1)
	assert.Equal(t, 0.9, r.commits[0].Features[Danceability])
}

func TestResetIsIdempotent(t *testing.T) {
	s, r := newRecordedStore()

	s.Reset()
	assert.Empty(t, r.commits, "reset at defaults must not propagate")

	require.NoError(t, s.ToggleFilter(FilterSameGenre))
	require.NoError(t, s.SetSimilarity(0.2))
	r.commits = nil

	s.Reset()
	first := s.Current()
	s.Reset()
	second := s.Current()

	assert.Len(t, r.commits, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, Default(), second)
}

func TestResetDetectsUncommittedChanges(t *testing.T) {
	s, r := newRecordedStore()
	require.NoError(t, s.SetFeatureWeight(Tonality, 0.1))

	s.Reset()

	require.Len(t, r.commits, 1)
	assert.Equal(t, DefaultFeatureWeight, r.commits[0].Features[Tonality])
}

func TestSetGenreClassification(t *testing.T) {
	s, r := newRecordedStore()
	require.NoError(t, s.SetGenreClassification(Dortmund))
	require.Len(t, r.commits, 1)
	assert.Equal(t, Dortmund, r.commits[0].Filters.GenreClassification)

	assert.ErrorIs(t, s.SetGenreClassification("tzanetakis"), segueerrors.ErrInvalidConfig)
	assert.Len(t, r.commits, 1)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"sum off", func(c *Config) { c.Total = TotalWeights{Similarity: 0.7, Popularity: 0.4} }, false},
		{"sum within tolerance", func(c *Config) { c.Total = TotalWeights{Similarity: 0.33333, Popularity: 0.66667} }, true},
		{"bad classification", func(c *Config) { c.Filters.GenreClassification = "jazzy" }, false},
		{"feature too high", func(c *Config) { c.Features[Brightness] = 1.5 }, false},
		{"feature negative", func(c *Config) { c.Features[MoodsMirex5] = -0.5 }, false},
		{"empty excluded artist", func(c *Config) { c.Filters.ExcludeArtists = []string{""} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, segueerrors.ErrInvalidConfig)
			}
		})
	}
}

func TestPayload(t *testing.T) {
	c := Default()
	c.Filters.ExcludeArtists = []string{"artist-1"}
	c.Features[Sadness] = 0.1

	p, err := c.Payload()
	require.NoError(t, err)

	assert.Equal(t, "rosamerica", p.Filters.GenreClassification)
	assert.Equal(t, []string{"artist-1"}, p.Filters.ExcludeArtists)
	assert.Len(t, p.FeatureWeights, int(NumFeatures))
	assert.Equal(t, 0.1, p.FeatureWeights["sadness"])
	assert.Equal(t, 0.5, p.FeatureWeights["moods_mirex_3"])
	assert.False(t, math.IsNaN(p.TotalWeights.Similarity))

	c.Total.Popularity = 0.9
	_, err = c.Payload()
	assert.ErrorIs(t, err, segueerrors.ErrInvalidConfig)
}

func TestParseFeature(t *testing.T) {
	f, err := ParseFeature("Moods_Mirex_2")
	require.NoError(t, err)
	assert.Equal(t, MoodsMirex2, f)

	_, err = ParseFeature("loudness")
	assert.ErrorIs(t, err, segueerrors.ErrInvalidConfig)
}
