package session

import (
	"context"
	"errors"
	"sync"

	"github.com/tessro/segue/internal/core"
	"github.com/tessro/segue/internal/player"
)

type fakePlayer struct {
	mu         sync.Mutex
	handlers   map[player.EventKind][]player.Handler
	initErr    error
	loads      []core.Source
	plays      int
	pauses     int
	stops      int
	destroyed  int
	initCalled int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{handlers: make(map[player.EventKind][]player.Handler)}
}

func (p *fakePlayer) Initialize(context.Context) error {
	p.mu.Lock()
	p.initCalled++
	err := p.initErr
	p.mu.Unlock()

	if err == nil {
		p.fire(player.Event{Kind: player.EventReady})
	}
	return err
}

func (p *fakePlayer) Subscribe(kind player.EventKind, h player.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[kind] = append(p.handlers[kind], h)
}

func (p *fakePlayer) fire(ev player.Event) {
	p.mu.Lock()
	hs := append([]player.Handler(nil), p.handlers[ev.Kind]...)
	p.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

func (p *fakePlayer) LoadSource(src core.Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, src)
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePlayer) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyed++
}

func (p *fakePlayer) loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.loads))
	for _, s := range p.loads {
		out = append(out, s.ID)
	}
	return out
}

type fakeResolver struct {
	mu      sync.Mutex
	sources map[string][]core.Source
	errs    map[string]error
	gates   map[string]chan struct{}
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		sources: make(map[string][]core.Source),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

// hold blocks lookups for mbid until the returned channel is closed.
func (r *fakeResolver) hold(mbid string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	gate := make(chan struct{})
	r.gates[mbid] = gate
	return gate
}

func (r *fakeResolver) set(mbid string, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	srcs := make([]core.Source, 0, len(ids))
	for _, id := range ids {
		srcs = append(srcs, core.Source{ID: id, Provider: core.ProviderYouTube})
	}
	r.sources[mbid] = srcs
}

func (r *fakeResolver) fail(mbid string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[mbid] = err
}

func (r *fakeResolver) Sources(ctx context.Context, mbid string) ([]core.Source, error) {
	r.mu.Lock()
	gate := r.gates[mbid]
	r.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[mbid]; err != nil {
		return nil, err
	}
	return r.sources[mbid], nil
}

type fakeRecommender struct {
	mu       sync.Mutex
	similar  map[string][]string
	gates    map[string]chan struct{}
	requests []core.RecommendRequest
}

func newFakeRecommender() *fakeRecommender {
	return &fakeRecommender{
		similar: make(map[string][]string),
		gates:   make(map[string]chan struct{}),
	}
}

func (r *fakeRecommender) set(target string, similar ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.similar[target] = similar
}

func (r *fakeRecommender) hold(target string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	gate := make(chan struct{})
	r.gates[target] = gate
	return gate
}

func (r *fakeRecommender) Recommend(ctx context.Context, req *core.RecommendRequest) (*core.Recommendation, error) {
	r.mu.Lock()
	r.requests = append(r.requests, *req)
	gate := r.gates[req.Target]
	ids, ok := r.similar[req.Target]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errors.New("unknown target")
	}

	rec := &core.Recommendation{Target: &core.Track{MBID: req.Target}}
	for _, id := range ids {
		rec.Similar = append(rec.Similar, core.SimilarTrack{Track: track(id), Similarity: 0.8})
	}
	rec.Stats.CandidateCount = len(ids)
	return rec, nil
}

func (r *fakeRecommender) requestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *fakeRecommender) request(i int) core.RecommendRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[i]
}

func track(id string) core.Track {
	return core.Track{MBID: id, Title: "Track " + id, Artists: []core.Artist{{MBID: "a-" + id, Name: "Artist " + id}}}
}
