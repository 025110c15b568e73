package tuning

import (
	"fmt"
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	segueerrors "github.com/tessro/segue/internal/errors"
)

// Store holds the live configuration and notifies observers on commit.
//
// Discrete changes (filter toggles, classification) commit immediately.
// Continuous changes (weight sliders) are applied to the working copy but only
// committed by EndGesture, so a drag produces a single downstream refetch.
type Store struct {
	mu        sync.Mutex
	defaults  Config
	current   Config
	observers []func(Config)
}

// NewStore creates a store seeded with defaults. The defaults are also the
// state Reset restores.
func NewStore(defaults Config) *Store {
	return &Store{
		defaults: defaults.Clone(),
		current:  defaults.Clone(),
	}
}

// Subscribe registers fn to be called synchronously with each committed
// configuration.
func (s *Store) Subscribe(fn func(Config)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Current returns a copy of the working configuration.
func (s *Store) Current() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// ToggleFilter flips a boolean filter and commits.
func (s *Store) ToggleFilter(key FilterKey) error {
	s.mu.Lock()
	switch key {
	case FilterSameGenre:
		s.current.Filters.SameGenre = !s.current.Filters.SameGenre
	case FilterSameDecade:
		s.current.Filters.SameDecade = !s.current.Filters.SameDecade
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown filter %q", segueerrors.ErrInvalidConfig, key)
	}
	s.mu.Unlock()

	s.commit()
	return nil
}

// SetGenreClassification switches the genre model and commits.
func (s *Store) SetGenreClassification(c GenreClassification) error {
	if c != Rosamerica && c != Dortmund {
		return fmt.Errorf("%w: unknown genre classification %q", segueerrors.ErrInvalidConfig, c)
	}

	s.mu.Lock()
	s.current.Filters.GenreClassification = c
	s.mu.Unlock()

	s.commit()
	return nil
}

// SetSimilarity sets the similarity weight and derives popularity. The change
// is committed by EndGesture.
func (s *Store) SetSimilarity(v float64) error {
	if err := checkRange("similarity", v); err != nil {
		return err
	}
	s.mu.Lock()
	s.current.Total = Split(v)
	s.mu.Unlock()
	return nil
}

// SetPopularity sets the popularity weight and derives similarity. The change
// is committed by EndGesture.
func (s *Store) SetPopularity(v float64) error {
	if err := checkRange("popularity", v); err != nil {
		return err
	}
	p := round4(v)
	s.mu.Lock()
	s.current.Total = TotalWeights{Similarity: round4(1 - p), Popularity: p}
	s.mu.Unlock()
	return nil
}

// SetFeatureWeight sets a single feature weight. The change is committed by
// EndGesture.
func (s *Store) SetFeatureWeight(f Feature, v float64) error {
	if f < 0 || f >= NumFeatures {
		return fmt.Errorf("%w: unknown feature %d", segueerrors.ErrInvalidConfig, int(f))
	}
	if err := checkRange(f.String(), v); err != nil {
		return err
	}
	s.mu.Lock()
	s.current.Features[f] = round4(v)
	s.mu.Unlock()
	return nil
}

// EndGesture commits the working configuration. It always propagates once,
// even if the released value equals the value at gesture start.
func (s *Store) EndGesture() {
	s.commit()
}

// Reset restores the defaults. Observers are notified only if the state
// actually changed, so repeated resets cause no redundant refetch.
func (s *Store) Reset() {
	s.mu.Lock()
	if sameConfig(s.current, s.defaults) {
		s.mu.Unlock()
		return
	}
	s.current = s.defaults.Clone()
	s.mu.Unlock()

	s.commit()
}

func (s *Store) commit() {
	s.mu.Lock()
	cfg := s.current.Clone()
	observers := make([]func(Config), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(cfg)
	}
}

func sameConfig(a, b Config) bool {
	ha, errA := hashstructure.Hash(a, hashstructure.FormatV2, nil)
	hb, errB := hashstructure.Hash(b, hashstructure.FormatV2, nil)
	if errA != nil || errB != nil {
		return false
	}
	return ha == hb
}

func checkRange(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be between 0 and 1, got %v", segueerrors.ErrInvalidConfig, name, v)
	}
	return nil
}
