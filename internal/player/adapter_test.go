package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/segue/internal/core"
	segueerrors "github.com/tessro/segue/internal/errors"
)

func newTestAdapter(w *fakeWidget) *Adapter {
	logger, _ := test.NewNullLogger()
	return New(w, logger)
}

func TestInitializeSharesBootstrap(t *testing.T) {
	w := newFakeWidget()
	w.gate = make(chan struct{})
	a := newTestAdapter(w)
	defer a.Destroy()

	var readies atomic.Int32
	a.Subscribe(EventReady, func(Event) { readies.Add(1) })

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = a.Initialize(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return w.bootstraps.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(w.gate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), w.bootstraps.Load())
	assert.Equal(t, int32(1), readies.Load())
	assert.True(t, a.Ready())

	require.NoError(t, a.Initialize(context.Background()))
	assert.Equal(t, int32(1), w.bootstraps.Load())
}

func TestInitializeFailureIsRetryable(t *testing.T) {
	w := newFakeWidget()
	w.bootErr = errors.New("mpv: executable not found")
	a := newTestAdapter(w)
	defer a.Destroy()

	err := a.Initialize(context.Background())
	assert.ErrorIs(t, err, segueerrors.ErrAdapterInit)
	assert.False(t, a.Ready())

	w.bootErr = nil
	require.NoError(t, a.Initialize(context.Background()))
	assert.True(t, a.Ready())
	assert.Equal(t, int32(2), w.bootstraps.Load())
}

func TestCommandsBeforeReadyAreDropped(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	defer a.Destroy()

	assert.NotPanics(t, func() {
		a.Play()
		a.Pause()
		a.Stop()
	})

	plays, pauses, stops := w.counts()
	assert.Zero(t, plays)
	assert.Zero(t, pauses)
	assert.Zero(t, stops)
}

func TestEarlyLoadIsDeferredUntilReady(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	defer a.Destroy()

	a.LoadSource(core.Source{ID: "first"})
	a.LoadSource(core.Source{ID: "latest"})
	assert.Empty(t, w.loaded())

	require.NoError(t, a.Initialize(context.Background()))
	assert.Equal(t, []core.Source{{ID: "latest"}}, w.loaded())
}

func TestLoadDuringReadyWinsOverDeferredLoad(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	defer a.Destroy()

	// Ready handlers run after the widget accepts commands but before the
	// deferred source is loaded.
	a.Subscribe(EventReady, func(Event) { a.LoadSource(core.Source{ID: "newer"}) })

	a.LoadSource(core.Source{ID: "older"})
	require.NoError(t, a.Initialize(context.Background()))

	assert.Equal(t, []core.Source{{ID: "newer"}}, w.loaded())
}

func TestFailedSourceIsForwardedWithoutLoad(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	defer a.Destroy()

	var ended atomic.Int32
	a.Subscribe(EventEnded, func(Event) { ended.Add(1) })
	failed := make(chan Event, 1)
	a.Subscribe(EventFailed, func(ev Event) { failed <- ev })
	require.NoError(t, a.Initialize(context.Background()))

	a.LoadSource(core.Source{ID: "broken"})
	w.events <- core.WidgetEvent{Kind: core.WidgetFailed, Reason: "loading failed"}

	select {
	case ev := <-failed:
		assert.Equal(t, EventFailed, ev.Kind)
		assert.Equal(t, "loading failed", ev.Reason)
	case <-time.After(time.Second):
		t.Fatal("failure was not forwarded")
	}

	// The failure disarms the edge; a stray end afterwards is ignored.
	w.events <- core.WidgetEvent{Kind: core.WidgetEnded, Reason: "eof"}
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, ended.Load())
}

func TestEndedFiresOncePerLoad(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	defer a.Destroy()

	var ended atomic.Int32
	a.Subscribe(EventEnded, func(Event) { ended.Add(1) })
	require.NoError(t, a.Initialize(context.Background()))

	// An end without a preceding load is ignored.
	w.events <- core.WidgetEvent{Kind: core.WidgetEnded, Reason: "eof"}

	a.LoadSource(core.Source{ID: "v1"})
	w.events <- core.WidgetEvent{Kind: core.WidgetLoaded}
	w.events <- core.WidgetEvent{Kind: core.WidgetEnded, Reason: "eof"}
	w.events <- core.WidgetEvent{Kind: core.WidgetEnded, Reason: "eof"}

	require.Eventually(t, func() bool { return ended.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), ended.Load())
}

func TestStateChangedForwardsPlaying(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	defer a.Destroy()

	got := make(chan bool, 2)
	a.Subscribe(EventStateChanged, func(ev Event) { got <- ev.Playing })
	require.NoError(t, a.Initialize(context.Background()))

	w.events <- core.WidgetEvent{Kind: core.WidgetStateChanged, Playing: true}
	w.events <- core.WidgetEvent{Kind: core.WidgetStateChanged, Playing: false}

	assert.True(t, <-got)
	assert.False(t, <-got)
}

func TestCommandsAfterReady(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	defer a.Destroy()
	require.NoError(t, a.Initialize(context.Background()))

	a.Play()
	a.Pause()
	a.Stop()

	plays, pauses, stops := w.counts()
	assert.Equal(t, 1, plays)
	assert.Equal(t, 1, pauses)
	assert.Equal(t, 1, stops)
}

func TestDestroyIsIdempotent(t *testing.T) {
	w := newFakeWidget()
	a := newTestAdapter(w)
	require.NoError(t, a.Initialize(context.Background()))

	a.Destroy()
	a.Destroy()

	assert.False(t, a.Ready())
	assert.Equal(t, 1, w.closed)

	err := a.Initialize(context.Background())
	assert.ErrorIs(t, err, segueerrors.ErrAdapterInit)

	a.LoadSource(core.Source{ID: "late"})
	assert.Empty(t, w.loaded())
}
