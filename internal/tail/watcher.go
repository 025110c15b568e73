package tail

import (
	"context"
	"time"

	"github.com/tessro/segue/internal/core"
)

// EventType represents the type of session event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackEnded
	EventPause
	EventResume
	EventQueueRefresh
	EventPlayerReady
	EventReset
	EventLoadFailed
)

// Event represents a session state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.SessionState
	Current   *core.SessionState
}

// StateSource publishes session snapshots.
type StateSource interface {
	Subscribe() <-chan core.SessionState
	Unsubscribe(ch <-chan core.SessionState)
}

// Watcher turns session snapshots into events.
type Watcher struct {
	source StateSource
	events chan Event
	done   chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source StateSource) *Watcher {
	return &Watcher{
		source: source,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
}

// Events returns the channel of session events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start consumes snapshots until ctx is done, Stop is called, or the source
// closes the subscription.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.events)

	states := w.source.Subscribe()
	defer w.source.Unsubscribe(states)

	var prev *core.SessionState

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case s, ok := <-states:
			if !ok {
				return nil
			}
			curr := s

			for _, e := range diffStates(prev, &curr) {
				select {
				case w.events <- e:
				default:
					// Drop event if channel is full
				}
			}

			prev = &curr
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffStates compares two states and returns detected events.
func diffStates(prev, curr *core.SessionState) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	emit := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First snapshot - no previous state
	if prev == nil {
		if curr.Ready {
			emit(EventPlayerReady)
		}
		if curr.HasTrack() {
			emit(EventTrackChange)
		}
		if curr.LoadFailures > 0 {
			emit(EventLoadFailed)
		}
		return events
	}

	if !prev.Ready && curr.Ready {
		emit(EventPlayerReady)
	}

	if curr.LoadFailures > prev.LoadFailures {
		emit(EventLoadFailed)
	}

	if prev.HasTrack() && !curr.HasTrack() {
		emit(EventReset)
		return events
	}

	if trackChanged(prev, curr) {
		emit(EventTrackChange)
	} else if prev.Phase != core.PhaseEnded && curr.Phase == core.PhaseEnded {
		emit(EventTrackEnded)
	}

	// Pause/Resume detection
	if curr.HasTrack() && curr.Phase != core.PhaseEnded {
		if prev.IsPlaying && !curr.IsPlaying {
			emit(EventPause)
		} else if !prev.IsPlaying && curr.IsPlaying {
			emit(EventResume)
		}
	}

	if statsChanged(prev, curr) {
		emit(EventQueueRefresh)
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *core.SessionState) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.MBID != curr.Track.MBID
}

// statsChanged reports a newly applied recommendation result.
func statsChanged(prev, curr *core.SessionState) bool {
	if curr.Stats == nil {
		return false
	}
	if prev.Stats == nil {
		return true
	}
	return *prev.Stats != *curr.Stats || len(prev.Queue) < len(curr.Queue)
}
