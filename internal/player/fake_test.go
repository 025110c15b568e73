package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tessro/segue/internal/core"
)

type fakeWidget struct {
	gate       chan struct{}
	bootErr    error
	bootstraps atomic.Int32

	mu      sync.Mutex
	loads   []core.Source
	plays   int
	pauses  int
	stops   int
	closed  int
	events  chan core.WidgetEvent
	closeMu sync.Once
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{events: make(chan core.WidgetEvent, 16)}
}

func (f *fakeWidget) Bootstrap(ctx context.Context) error {
	f.bootstraps.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.bootErr
}

func (f *fakeWidget) Load(src core.Source) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, src)
	return nil
}

func (f *fakeWidget) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	return nil
}

func (f *fakeWidget) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	return nil
}

func (f *fakeWidget) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeWidget) Events() <-chan core.WidgetEvent {
	return f.events
}

func (f *fakeWidget) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	f.closeMu.Do(func() { close(f.events) })
	return errors.New("already exited")
}

func (f *fakeWidget) loaded() []core.Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Source(nil), f.loads...)
}

func (f *fakeWidget) counts() (plays, pauses, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays, f.pauses, f.stops
}
