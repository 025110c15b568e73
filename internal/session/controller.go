// Package session coordinates playback, listening history, and
// recommendations for a single listening session.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tessro/segue/internal/core"
	segueerrors "github.com/tessro/segue/internal/errors"
	"github.com/tessro/segue/internal/history"
	"github.com/tessro/segue/internal/player"
	"github.com/tessro/segue/internal/recommend"
	"github.com/tessro/segue/internal/tuning"
)

const (
	DefaultStartTimeout   = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second

	opBuffer = 64
)

// Player is the playback surface the controller drives. *player.Adapter
// implements it.
type Player interface {
	Initialize(ctx context.Context) error
	Subscribe(kind player.EventKind, h player.Handler)
	LoadSource(src core.Source)
	Play()
	Pause()
	Stop()
	Destroy()
}

var _ Player = (*player.Adapter)(nil)

// Deps are the collaborators of a Controller.
type Deps struct {
	Player      Player
	Resolver    core.SourceResolver
	Recommender core.Recommender
	Tuning      *tuning.Store
	Log         logrus.FieldLogger
}

// Options tune a Controller. Zero values select defaults.
type Options struct {
	RecommendLimit int
	StartTimeout   time.Duration
	RequestTimeout time.Duration
}

type origin int

const (
	originUser origin = iota
	originAuto
)

func (o origin) String() string {
	if o == originAuto {
		return "auto"
	}
	return "user"
}

// Controller owns the session state. Every mutation runs on a single loop
// goroutine; asynchronous work posts its continuation back to the loop.
type Controller struct {
	player   Player
	resolver core.SourceResolver
	store    *tuning.Store
	log      logrus.FieldLogger
	opts     Options

	// Loop-owned.
	recs        *recommend.Manager
	history     *history.Tracker
	tuning      tuning.Config
	track       *core.Track
	source      *core.Source
	phase       core.Phase
	isPlaying   bool
	isMaximized bool
	ready       bool
	loadSeq     uint64
	failures    int
	// restore is the phase a failed load returns to. An end that arrives
	// while a load resolves rewrites it to Ended.
	restore     core.Phase

	ops      chan func()
	done     chan struct{}
	loopDone chan struct{}
	alive    atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc

	initOnce    sync.Once
	disposeOnce sync.Once

	subMu sync.Mutex
	subs  map[<-chan core.SessionState]chan core.SessionState
	last  atomic.Pointer[core.SessionState]
}

// New creates a controller and starts its loop. Callers must eventually call
// Dispose.
func New(deps Deps, opts Options) *Controller {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "session")

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		player:   deps.Player,
		resolver: deps.Resolver,
		store:    deps.Tuning,
		log:      log,
		opts:     opts,
		recs:     recommend.NewManager(deps.Recommender, opts.RecommendLimit, deps.Log),
		history:  history.New(),
		tuning:   deps.Tuning.Current(),
		ops:      make(chan func(), opBuffer),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[<-chan core.SessionState]chan core.SessionState),
	}
	c.alive.Store(true)
	initial := c.snapshot()
	c.last.Store(&initial)

	c.player.Subscribe(player.EventReady, func(player.Event) {
		c.post(c.onReady)
	})
	c.player.Subscribe(player.EventStateChanged, func(ev player.Event) {
		c.post(func() { c.onPlaybackStateChanged(ev.Playing) })
	})
	c.player.Subscribe(player.EventEnded, func(player.Event) {
		c.post(c.onEnded)
	})
	c.player.Subscribe(player.EventFailed, func(ev player.Event) {
		c.post(func() { c.onFailed(ev.Reason) })
	})
	c.store.Subscribe(func(cfg tuning.Config) {
		c.post(func() { c.onTuningCommitted(cfg) })
	})

	go c.run()
	return c
}

// Init starts the player's one-time initialization. A failure is logged and
// leaves the session usable with ready=false.
func (c *Controller) Init(ctx context.Context) {
	c.initOnce.Do(func() {
		c.async(func(loopCtx context.Context) func() {
			ctx, cancel := context.WithTimeout(ctx, c.opts.StartTimeout)
			defer cancel()
			stop := context.AfterFunc(loopCtx, cancel)
			defer stop()

			if err := c.player.Initialize(ctx); err != nil {
				return func() {
					c.log.WithError(err).Error("player initialization failed")
				}
			}
			return nil
		})
	})
}

// Dispose stops the loop and destroys the player. Continuations that arrive
// later are dropped. Safe to call more than once.
func (c *Controller) Dispose() {
	c.disposeOnce.Do(func() {
		c.alive.Store(false)
		c.cancel()
		close(c.done)
		<-c.loopDone
		c.player.Destroy()

		c.subMu.Lock()
		for key, ch := range c.subs {
			close(ch)
			delete(c.subs, key)
		}
		c.subMu.Unlock()
	})
}

func (c *Controller) run() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.done:
			return
		case fn := <-c.ops:
			fn()
			c.publish()
		}
	}
}

// post schedules fn on the loop. It reports false once the controller is
// disposed.
func (c *Controller) post(fn func()) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.ops <- fn:
		return true
	case <-c.done:
		return false
	}
}

// call runs fn on the loop and waits for it.
func (c *Controller) call(fn func()) bool {
	finished := make(chan struct{})
	if !c.post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-c.loopDone:
		return false
	}
}

// async runs work off the loop and posts the continuation it returns.
func (c *Controller) async(work func(ctx context.Context) func()) {
	go func() {
		next := work(c.ctx)
		if next == nil {
			return
		}
		c.post(func() {
			if c.alive.Load() {
				next()
			}
		})
	}()
}

// LoadAndPlay starts a new recommendation chain at t.
func (c *Controller) LoadAndPlay(t core.Track) {
	c.call(func() { c.beginLoad(t, originUser) })
}

// Skip advances to the next recommendation.
func (c *Controller) Skip() {
	c.call(func() {
		if c.track == nil {
			return
		}
		c.advance()
	})
}

// Reset stops playback and returns the session to its initial state.
func (c *Controller) Reset() {
	c.call(func() {
		c.loadSeq++
		c.player.Stop()
		c.track = nil
		c.source = nil
		c.phase = core.PhaseIdle
		c.isPlaying = false
		c.isMaximized = false
		c.history.Reset()
		c.recs.Clear()
	})
}

func (c *Controller) Minimize() {
	c.call(func() { c.isMaximized = false })
}

func (c *Controller) ToggleMaximize() {
	c.call(func() { c.isMaximized = !c.isMaximized })
}

// TogglePlayback asks the player to pause or resume. The playing flag only
// changes when the player reports it.
func (c *Controller) TogglePlayback() {
	c.call(func() {
		if c.track == nil {
			return
		}
		if c.isPlaying {
			c.player.Pause()
		} else {
			c.player.Play()
		}
	})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() core.SessionState {
	var s core.SessionState
	if c.call(func() { s = c.snapshot() }) {
		return s
	}
	return *c.last.Load()
}

// Subscribe returns a channel that receives the latest state after every
// change. Slow readers only see the most recent state.
func (c *Controller) Subscribe() <-chan core.SessionState {
	ch := make(chan core.SessionState, 1)

	c.subMu.Lock()
	defer c.subMu.Unlock()

	select {
	case <-c.done:
		close(ch)
		return ch
	default:
	}
	ch <- *c.last.Load()
	c.subs[ch] = ch
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (c *Controller) Unsubscribe(ch <-chan core.SessionState) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if sub, ok := c.subs[ch]; ok {
		delete(c.subs, ch)
		close(sub)
	}
}

func (c *Controller) publish() {
	s := c.snapshot()
	c.last.Store(&s)

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

func (c *Controller) snapshot() core.SessionState {
	s := core.SessionState{
		Phase:         c.phase,
		IsPlaying:     c.isPlaying,
		IsMaximized:   c.isMaximized,
		Ready:         c.ready,
		Queue:         c.recs.Items(),
		Stats:         c.recs.Stats(),
		History:       c.history.Snapshot(),
		HistoryLength: c.history.Len(),
		LoadFailures:  c.failures,
	}
	if c.track != nil {
		t := *c.track
		s.Track = &t
	}
	if c.source != nil {
		src := *c.source
		s.Source = &src
	}
	return s
}

func (c *Controller) beginLoad(t core.Track, o origin) {
	c.loadSeq++
	seq := c.loadSeq
	if c.phase != core.PhaseLoading {
		c.restore = c.phase
	}
	c.phase = core.PhaseLoading

	c.log.WithFields(logrus.Fields{"mbid": t.MBID, "origin": o}).Debug("resolving sources")

	c.async(func(ctx context.Context) func() {
		ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()

		sources, err := c.resolver.Sources(ctx, t.MBID)
		return func() { c.finishLoad(seq, t, o, sources, err) }
	})
}

func (c *Controller) finishLoad(seq uint64, t core.Track, o origin, sources []core.Source, err error) {
	if seq != c.loadSeq {
		return
	}

	if err == nil && len(sources) == 0 {
		err = segueerrors.ErrNoSource
	} else if err != nil {
		err = fmt.Errorf("%w: %w", segueerrors.ErrSourceResolution, err)
	}
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"mbid": t.MBID, "origin": o}).Warn("cannot play track")
		c.failures++
		c.phase = c.restore
		if o == originAuto || c.phase == core.PhaseEnded {
			c.advance()
		}
		return
	}

	if o == originUser {
		c.history.Reset()
	} else if c.track != nil {
		c.history.Append(c.track.MBID)
	}
	c.recs.Retarget(t.MBID)

	src := sources[0]
	c.track = &t
	c.source = &src
	c.phase = core.PhasePlaying
	c.isMaximized = true

	c.log.WithFields(logrus.Fields{"mbid": t.MBID, "source": src.ID, "origin": o}).Info("playing")
	c.player.LoadSource(src)
	c.requestRecommendations()
}

// advance plays the queue head. An empty queue leaves the session as is.
func (c *Controller) advance() {
	next, ok := c.recs.Pop()
	if !ok {
		c.log.Debug("recommendation queue exhausted")
		return
	}
	c.beginLoad(next.Track, originAuto)
}

func (c *Controller) requestRecommendations() {
	if c.track == nil {
		return
	}
	ticket := c.recs.Prepare(c.history.Snapshot(), c.tuning)
	c.async(func(ctx context.Context) func() {
		ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()

		res := c.recs.Fetch(ctx, ticket)
		return func() { c.recs.Apply(res) }
	})
}

func (c *Controller) onReady() {
	c.ready = true
}

func (c *Controller) onPlaybackStateChanged(playing bool) {
	c.isPlaying = playing
	if c.track == nil {
		return
	}
	switch c.phase {
	case core.PhasePlaying, core.PhasePaused:
		if playing {
			c.phase = core.PhasePlaying
		} else {
			c.phase = core.PhasePaused
		}
	}
}

func (c *Controller) onEnded() {
	c.isPlaying = false
	if c.phase == core.PhaseLoading {
		// The pending load replaces the finished track. If it fails, the
		// session falls back to Ended and advances.
		c.restore = core.PhaseEnded
		return
	}
	c.phase = core.PhaseEnded
	c.advance()
}

// onFailed handles a source the player could not play. The track is treated
// as finished.
func (c *Controller) onFailed(reason string) {
	fields := logrus.Fields{"reason": reason}
	if c.track != nil {
		fields["mbid"] = c.track.MBID
	}
	c.log.WithFields(fields).Warn("player could not play source")

	if c.track == nil {
		return
	}
	c.onEnded()
}

func (c *Controller) onTuningCommitted(cfg tuning.Config) {
	c.tuning = cfg
	c.requestRecommendations()
}
