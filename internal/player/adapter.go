// Package player adapts an external media widget into a small, event-driven
// playback API with a one-time asynchronous initialization.
package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/tessro/segue/internal/core"
	segueerrors "github.com/tessro/segue/internal/errors"
)

// EventKind identifies an adapter event.
type EventKind int

const (
	EventReady EventKind = iota
	EventStateChanged
	EventEnded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventStateChanged:
		return "state_changed"
	case EventEnded:
		return "ended"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers. Playing is set for EventStateChanged
// and Reason for EventFailed.
type Event struct {
	Kind    EventKind
	Playing bool
	Reason  string
}

// Handler receives adapter events. Handlers run on the adapter's event
// goroutine and must not block.
type Handler func(Event)

// Adapter owns a single widget instance.
type Adapter struct {
	widget core.Widget
	log    logrus.FieldLogger
	group  singleflight.Group

	// loadMu orders widget loads so a deferred source never lands after a
	// newer one.
	loadMu sync.Mutex

	mu        sync.Mutex
	ready     bool
	destroyed bool
	pending   *core.Source
	armed     bool
	handlers  map[EventKind][]Handler

	pump sync.WaitGroup
}

// New wraps w. The widget is not started until Initialize.
func New(w core.Widget, log logrus.FieldLogger) *Adapter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Adapter{
		widget:   w,
		log:      log.WithField("component", "player"),
		handlers: make(map[EventKind][]Handler),
	}
}

// Subscribe registers h for events of the given kind.
func (a *Adapter) Subscribe(kind EventKind, h Handler) {
	a.mu.Lock()
	a.handlers[kind] = append(a.handlers[kind], h)
	a.mu.Unlock()
}

// Ready reports whether the widget accepts commands.
func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// Initialize bootstraps the widget once. Concurrent callers share a single
// bootstrap. After success it returns nil immediately; after failure a later
// call retries.
func (a *Adapter) Initialize(ctx context.Context) error {
	a.mu.Lock()
	ready, destroyed := a.ready, a.destroyed
	a.mu.Unlock()

	if ready {
		return nil
	}
	if destroyed {
		return fmt.Errorf("%w: adapter destroyed", segueerrors.ErrAdapterInit)
	}

	_, err, _ := a.group.Do("init", func() (any, error) {
		return nil, a.bootstrap(ctx)
	})
	return err
}

func (a *Adapter) bootstrap(ctx context.Context) error {
	if a.Ready() {
		return nil
	}

	if err := a.widget.Bootstrap(ctx); err != nil {
		a.log.WithError(err).Error("player bootstrap failed")
		return fmt.Errorf("%w: %w", segueerrors.ErrAdapterInit, err)
	}

	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return fmt.Errorf("%w: adapter destroyed during bootstrap", segueerrors.ErrAdapterInit)
	}
	a.ready = true
	a.pump.Add(1)
	a.mu.Unlock()

	go a.run(a.widget.Events())

	a.log.Debug("player ready")
	a.emit(Event{Kind: EventReady})

	a.loadPending()
	return nil
}

// loadPending loads the source deferred before ready, unless a newer load
// already replaced it.
func (a *Adapter) loadPending() {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	if pending == nil || a.destroyed {
		a.mu.Unlock()
		return
	}
	a.armed = false
	a.mu.Unlock()

	a.load(*pending)
}

func (a *Adapter) run(events <-chan core.WidgetEvent) {
	defer a.pump.Done()

	for ev := range events {
		switch ev.Kind {
		case core.WidgetLoaded:
			a.mu.Lock()
			a.armed = true
			a.mu.Unlock()

		case core.WidgetStateChanged:
			a.emit(Event{Kind: EventStateChanged, Playing: ev.Playing})

		case core.WidgetEnded:
			a.mu.Lock()
			fire := a.armed
			a.armed = false
			a.mu.Unlock()

			if fire {
				a.emit(Event{Kind: EventEnded})
			} else {
				a.log.WithField("reason", ev.Reason).Debug("ignoring unarmed end")
			}

		case core.WidgetFailed:
			// A source that never loads is never armed.
			a.mu.Lock()
			a.armed = false
			a.mu.Unlock()

			a.log.WithField("reason", ev.Reason).Warn("source failed to play")
			a.emit(Event{Kind: EventFailed, Reason: ev.Reason})
		}
	}
}

func (a *Adapter) emit(ev Event) {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	hs := append([]Handler(nil), a.handlers[ev.Kind]...)
	a.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}

// LoadSource loads src and starts playback. Before the widget is ready the
// most recent source is held and loaded once it is.
func (a *Adapter) LoadSource(src core.Source) {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	if !a.ready {
		a.pending = &src
		a.mu.Unlock()
		a.log.WithField("source", src.ID).Debug("player not ready, deferring load")
		return
	}
	a.pending = nil
	a.armed = false
	a.mu.Unlock()

	a.load(src)
}

func (a *Adapter) load(src core.Source) {
	if err := a.widget.Load(src); err != nil {
		a.log.WithError(err).WithField("source", src.ID).Warn("load failed")
	}
}

// Play resumes playback. No-op before ready.
func (a *Adapter) Play() {
	a.command("play", a.widget.Play)
}

// Pause pauses playback. No-op before ready.
func (a *Adapter) Pause() {
	a.command("pause", a.widget.Pause)
}

// Stop stops playback and drops any deferred load.
func (a *Adapter) Stop() {
	a.mu.Lock()
	a.pending = nil
	a.armed = false
	a.mu.Unlock()

	a.command("stop", a.widget.Stop)
}

func (a *Adapter) command(name string, fn func() error) {
	a.mu.Lock()
	ok := a.ready && !a.destroyed
	a.mu.Unlock()

	if !ok {
		a.log.WithField("command", name).Debug("player not ready, dropping command")
		return
	}
	if err := fn(); err != nil {
		a.log.WithError(err).WithField("command", name).Warn("player command failed")
	}
}

// Destroy shuts the widget down and waits for its event goroutine to exit.
// Safe to call more than once.
func (a *Adapter) Destroy() {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	a.destroyed = true
	a.ready = false
	a.pending = nil
	a.mu.Unlock()

	if err := a.widget.Close(); err != nil {
		a.log.WithError(err).Warn("player close failed")
	}
	a.pump.Wait()
}
