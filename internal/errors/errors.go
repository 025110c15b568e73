package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNoSource           = errors.New("no playable source")
	ErrSourceResolution   = errors.New("source resolution failed")
	ErrRecommendFetch     = errors.New("recommendation fetch failed")
	ErrAdapterInit        = errors.New("player initialization failed")
	ErrAdapterNotReady    = errors.New("player not ready")
	ErrTrackNotFound      = errors.New("track not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrNetworkError       = errors.New("network error")
	ErrTimeout            = errors.New("request timeout")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// SegueError wraps an error with a user-friendly suggestion.
type SegueError struct {
	Err        error
	Suggestion string
}

func (e *SegueError) Error() string {
	return e.Err.Error()
}

func (e *SegueError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &SegueError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var segueErr *SegueError
	if errors.As(err, &segueErr) && segueErr.Suggestion != "" {
		return segueErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrAdapterInit) || strings.Contains(errStr, "mpv") {
		return "Make sure mpv is installed and on your PATH, or set player.mpv_path in ~/.seguerc"
	}

	if errors.Is(err, ErrNoSource) {
		return "This track has no playable source yet. Try another one"
	}

	if errors.Is(err, ErrTrackNotFound) || strings.Contains(errStr, "not found") {
		return "Run 'segue search <query>' to find a valid track ID"
	}

	if errors.Is(err, ErrServiceUnavailable) {
		return "The recommendation service keeps failing. Wait a moment and try again"
	}

	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment or lower api.rate_limit"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check that the catalog API is reachable at api.base_url"
	}

	if errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrConfigNotFound) ||
		strings.Contains(errStr, "config") {
		return "Run 'segue config validate' to check your configuration"
	}

	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "The catalog API is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
