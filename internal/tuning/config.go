// Package tuning holds the user-tunable recommendation filters and weights.
package tuning

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	segueerrors "github.com/tessro/segue/internal/errors"
)

// Feature is one of the audio features the recommendation engine can weight.
type Feature int

const (
	Danceability Feature = iota
	Aggressiveness
	Happiness
	Sadness
	Relaxedness
	Partyness
	Acousticness
	Electronicness
	Instrumentalness
	Tonality
	Brightness
	MoodsMirex1
	MoodsMirex2
	MoodsMirex3
	MoodsMirex4
	MoodsMirex5

	NumFeatures
)

var featureNames = [NumFeatures]string{
	"danceability",
	"aggressiveness",
	"happiness",
	"sadness",
	"relaxedness",
	"partyness",
	"acousticness",
	"electronicness",
	"instrumentalness",
	"tonality",
	"brightness",
	"moods_mirex_1",
	"moods_mirex_2",
	"moods_mirex_3",
	"moods_mirex_4",
	"moods_mirex_5",
}

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

// ParseFeature looks up a feature by its wire name.
func ParseFeature(name string) (Feature, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range featureNames {
		if n == name {
			return Feature(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown feature %q", segueerrors.ErrInvalidConfig, name)
}

// Features returns every feature in wire order.
func Features() []Feature {
	out := make([]Feature, NumFeatures)
	for i := range out {
		out[i] = Feature(i)
	}
	return out
}

// GenreClassification selects which genre model the same_genre filter uses.
type GenreClassification string

const (
	Rosamerica GenreClassification = "rosamerica"
	Dortmund   GenreClassification = "dortmund"
)

// FilterKey names a boolean filter.
type FilterKey string

const (
	FilterSameGenre  FilterKey = "same_genre"
	FilterSameDecade FilterKey = "same_decade"
)

// FilterConfig restricts the candidate set.
type FilterConfig struct {
	SameGenre           bool                `json:"same_genre" toml:"same_genre"`
	SameDecade          bool                `json:"same_decade" toml:"same_decade"`
	GenreClassification GenreClassification `json:"genre_classification" toml:"genre_classification" validate:"oneof=rosamerica dortmund"`
	ExcludeArtists      []string            `json:"exclude_artists,omitempty" toml:"exclude_artists" validate:"dive,required"`
}

// TotalWeights splits ranking between similarity and popularity. The two
// always sum to 1.
type TotalWeights struct {
	Similarity float64 `json:"similarity" validate:"gte=0,lte=1"`
	Popularity float64 `json:"popularity" validate:"gte=0,lte=1"`
}

// FeatureWeights holds one weight per Feature.
type FeatureWeights [NumFeatures]float64

// Config is a complete filter and weight configuration.
type Config struct {
	Filters  FilterConfig
	Total    TotalWeights
	Features FeatureWeights `validate:"dive,gte=0,lte=1"`
}

const (
	DefaultSimilarity    = 0.7
	DefaultFeatureWeight = 0.5

	sumTolerance = 1e-4
)

// Default returns the stock configuration.
func Default() Config {
	c := Config{
		Filters: FilterConfig{
			SameGenre:           true,
			SameDecade:          true,
			GenreClassification: Rosamerica,
		},
		Total: Split(DefaultSimilarity),
	}
	for i := range c.Features {
		c.Features[i] = DefaultFeatureWeight
	}
	return c
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	if c.Filters.ExcludeArtists != nil {
		c.Filters.ExcludeArtists = append([]string(nil), c.Filters.ExcludeArtists...)
	}
	return c
}

// FiltersPayload is the wire form of FilterConfig.
type FiltersPayload struct {
	SameGenre           bool     `json:"same_genre"`
	SameDecade          bool     `json:"same_decade"`
	GenreClassification string   `json:"genre_classification"`
	ExcludeArtists      []string `json:"exclude_artists,omitempty"`
}

// Payload is the wire form of Config, as embedded in a recommend request.
type Payload struct {
	Filters        FiltersPayload     `json:"filters"`
	FeatureWeights map[string]float64 `json:"feature_weights"`
	TotalWeights   TotalWeights       `json:"total_weights"`
}

// Payload validates c and converts it to its wire form.
func (c Config) Payload() (*Payload, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := &Payload{
		Filters: FiltersPayload{
			SameGenre:           c.Filters.SameGenre,
			SameDecade:          c.Filters.SameDecade,
			GenreClassification: string(c.Filters.GenreClassification),
			ExcludeArtists:      c.Filters.ExcludeArtists,
		},
		FeatureWeights: make(map[string]float64, NumFeatures),
		TotalWeights:   c.Total,
	}
	for i, w := range c.Features {
		p.FeatureWeights[featureNames[i]] = w
	}
	return p, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(validateTotalWeights, TotalWeights{})
	})
	return validate
}

func validateTotalWeights(sl validator.StructLevel) {
	tw := sl.Current().Interface().(TotalWeights)
	if math.Abs(tw.Similarity+tw.Popularity-1) > sumTolerance {
		sl.ReportError(tw.Similarity, "Similarity", "similarity", "weightsum", "")
	}
}

// Validate checks ranges, the genre classification, and the weight sum.
func (c Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("%w: %s", segueerrors.ErrInvalidConfig, describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "weightsum":
			msgs = append(msgs, "similarity and popularity must sum to 1")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Namespace(), fe.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be between 0 and 1, got %v", fe.Namespace(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Split derives TotalWeights from a similarity weight, rounded to four
// decimals.
func Split(similarity float64) TotalWeights {
	s := round4(similarity)
	return TotalWeights{Similarity: s, Popularity: round4(1 - s)}
}
