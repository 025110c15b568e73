package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	segueerrors "github.com/tessro/segue/internal/errors"
	"github.com/tessro/segue/internal/tuning"
)

// tuningFlags override the [recommend] config section for one command.
type tuningFlags struct {
	sameGenre  bool
	sameDecade bool
	genreModel string
	similarity float64
	exclude    []string
	weights    []string
}

func (f *tuningFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.sameGenre, "same-genre", true, "only recommend tracks of the same genre")
	fs.BoolVar(&f.sameDecade, "same-decade", true, "only recommend tracks from the same decade")
	fs.StringVar(&f.genreModel, "genre-model", "", "genre classification: rosamerica or dortmund")
	fs.Float64Var(&f.similarity, "similarity", tuning.DefaultSimilarity, "similarity weight (popularity is 1 minus this)")
	fs.StringArrayVar(&f.exclude, "exclude-artist", nil, "artist to leave out (repeatable)")
	fs.StringArrayVarP(&f.weights, "weight", "w", nil, "feature weight as name=value (repeatable)")
}

// apply layers the flags the user actually set over base.
func (f *tuningFlags) apply(cmd *cobra.Command, base tuning.Config) (tuning.Config, error) {
	out := base.Clone()
	fs := cmd.Flags()

	if fs.Changed("same-genre") {
		out.Filters.SameGenre = f.sameGenre
	}
	if fs.Changed("same-decade") {
		out.Filters.SameDecade = f.sameDecade
	}
	if f.genreModel != "" {
		out.Filters.GenreClassification = tuning.GenreClassification(strings.ToLower(f.genreModel))
	}
	if fs.Changed("similarity") {
		if f.similarity < 0 || f.similarity > 1 {
			return out, fmt.Errorf("%w: similarity must be between 0 and 1", segueerrors.ErrInvalidConfig)
		}
		out.Total = tuning.Split(f.similarity)
	}
	if len(f.exclude) > 0 {
		out.Filters.ExcludeArtists = append(out.Filters.ExcludeArtists, f.exclude...)
	}

	for _, w := range f.weights {
		feature, value, err := parseWeight(w)
		if err != nil {
			return out, err
		}
		out.Features[feature] = value
	}

	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

func parseWeight(s string) (tuning.Feature, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("%w: weight %q must be name=value", segueerrors.ErrInvalidConfig, s)
	}
	feature, err := tuning.ParseFeature(name)
	if err != nil {
		return 0, 0, segueerrors.WithSuggestion(err, "Known features: "+featureList())
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || v > 1 {
		return 0, 0, fmt.Errorf("%w: weight for %s must be a number between 0 and 1", segueerrors.ErrInvalidConfig, name)
	}
	return feature, v, nil
}

func featureList() string {
	names := make([]string, 0, tuning.NumFeatures)
	for _, f := range tuning.Features() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
