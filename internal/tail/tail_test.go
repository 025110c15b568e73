package tail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/segue/internal/core"
)

func playing(id string, isPlaying bool) *core.SessionState {
	return &core.SessionState{
		Track:     &core.Track{MBID: id, Title: "Song " + id, Artists: []core.Artist{{Name: "Band"}}},
		Phase:     core.PhasePlaying,
		IsPlaying: isPlaying,
	}
}

func types(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestDiffStates(t *testing.T) {
	ended := playing("x", false)
	ended.Phase = core.PhaseEnded

	withStats := playing("x", true)
	withStats.Stats = &core.RecommendStats{CandidateCount: 1200}
	withStats.Queue = []core.SimilarTrack{{Track: core.Track{MBID: "y"}}}

	ready := &core.SessionState{Ready: true}

	tests := []struct {
		name string
		prev *core.SessionState
		curr *core.SessionState
		want []EventType
	}{
		{"first idle", nil, &core.SessionState{}, nil},
		{"first with track", nil, playing("x", true), []EventType{EventTrackChange}},
		{"ready", &core.SessionState{}, ready, []EventType{EventPlayerReady}},
		{"track change", playing("x", true), playing("y", true), []EventType{EventTrackChange}},
		{"pause", playing("x", true), playing("x", false), []EventType{EventPause}},
		{"resume", playing("x", false), playing("x", true), []EventType{EventResume}},
		{"ended", playing("x", true), ended, []EventType{EventTrackEnded}},
		{"queue refresh", playing("x", true), withStats, []EventType{EventQueueRefresh}},
		{"reset", playing("x", true), &core.SessionState{}, []EventType{EventReset}},
		{"no change", playing("x", true), playing("x", true), nil},
		{"load failed", &core.SessionState{Phase: core.PhaseLoading}, &core.SessionState{LoadFailures: 1}, []EventType{EventLoadFailed}},
		{"first after failed load", nil, &core.SessionState{LoadFailures: 1}, []EventType{EventLoadFailed}},
		{"failure already seen", &core.SessionState{LoadFailures: 1}, &core.SessionState{LoadFailures: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffStates(tt.prev, tt.curr)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, types(got))
		})
	}
}

func TestFormatter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 15, 0, time.UTC)
	state := playing("x", true)
	state.Stats = &core.RecommendStats{CandidateCount: 12345, SearchTime: 0.084}
	state.Queue = make([]core.SimilarTrack, 3)

	tests := []struct {
		name string
		f    *Formatter
		e    Event
		want string
	}{
		{
			name: "plain",
			f:    NewFormatter(WithEmoji(false)),
			e:    Event{Type: EventTrackChange, Timestamp: now, Current: state},
			want: "Now playing: Band - Song x",
		},
		{
			name: "emoji and timestamp",
			f:    NewFormatter(WithTimestamp(true)),
			e:    Event{Type: EventPause, Timestamp: now, Current: state},
			want: "12:30:15 ⏸️ Paused",
		},
		{
			name: "queue refresh",
			f:    NewFormatter(WithEmoji(false)),
			e:    Event{Type: EventQueueRefresh, Timestamp: now, Current: state},
			want: "Up next: 3 similar tracks from 12,345 candidates in 0.08s",
		},
		{
			name: "template",
			f:    NewFormatter(WithTemplate("{{.Type}} {{.Title}} q={{.Queue}} c={{.Candidates}}")),
			e:    Event{Type: EventTrackChange, Timestamp: now, Current: state},
			want: "track_change Song x q=3 c=12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Format(tt.e))
		})
	}
}

type fakeSource struct {
	ch           chan core.SessionState
	unsubscribed bool
}

func (f *fakeSource) Subscribe() <-chan core.SessionState { return f.ch }
func (f *fakeSource) Unsubscribe(<-chan core.SessionState) {
	f.unsubscribed = true
}

func TestWatcher(t *testing.T) {
	src := &fakeSource{ch: make(chan core.SessionState, 4)}
	w := NewWatcher(src)

	src.ch <- core.SessionState{}
	src.ch <- *playing("x", true)
	src.ch <- *playing("x", false)
	close(src.ch)

	require.NoError(t, w.Start(context.Background()))

	var got []EventType
	for e := range w.Events() {
		got = append(got, e.Type)
	}
	assert.Equal(t, []EventType{EventTrackChange, EventPause}, got)
	assert.True(t, src.unsubscribed)
}
