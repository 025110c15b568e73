// Package recommend keeps the queue of similar tracks for the current target.
package recommend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tessro/segue/internal/core"
	segueerrors "github.com/tessro/segue/internal/errors"
	"github.com/tessro/segue/internal/tuning"
)

// DefaultLimit matches the recommendation engine's default result count.
const DefaultLimit = 50

// Ticket stamps a request with the target in effect when it was issued.
type Ticket struct {
	Token   string
	Seq     uint64
	Request core.RecommendRequest
}

// Result is the outcome of fetching a Ticket.
type Result struct {
	Ticket         Ticket
	Recommendation *core.Recommendation
	Err            error
}

// Manager owns the recommendation queue. All methods except Fetch must be
// called from the session loop.
type Manager struct {
	recommender core.Recommender
	limit       int
	log         logrus.FieldLogger

	target     string
	seq        uint64
	appliedSeq uint64
	queue      core.Queue
	stats      *core.RecommendStats
}

// NewManager creates a manager. A non-positive limit selects DefaultLimit.
func NewManager(r core.Recommender, limit int, log logrus.FieldLogger) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		recommender: r,
		limit:       limit,
		log:         log.WithField("component", "recommend"),
	}
}

// Retarget empties the queue and makes id the current generation token.
// Results for any other target are discarded from now on.
func (m *Manager) Retarget(id string) {
	m.target = id
	m.queue = core.Queue{}
	m.stats = nil
}

// Target returns the current generation token.
func (m *Manager) Target() string {
	return m.target
}

// Prepare builds a ticket for the current target.
func (m *Manager) Prepare(listened []string, cfg tuning.Config) Ticket {
	m.seq++
	if listened == nil {
		listened = []string{}
	}
	return Ticket{
		Token: m.target,
		Seq:   m.seq,
		Request: core.RecommendRequest{
			Target:   m.target,
			Listened: listened,
			Tuning:   cfg.Clone(),
			Limit:    m.limit,
		},
	}
}

// Fetch performs the request. Safe to call off the session loop.
func (m *Manager) Fetch(ctx context.Context, t Ticket) Result {
	req := t.Request
	rec, err := m.recommender.Recommend(ctx, &req)
	if err != nil {
		err = fmt.Errorf("%w: %w", segueerrors.ErrRecommendFetch, err)
	}
	return Result{Ticket: t, Recommendation: rec, Err: err}
}

// Apply installs a result if it is still current. It reports whether the
// queue changed.
func (m *Manager) Apply(r Result) bool {
	fields := logrus.Fields{"token": r.Ticket.Token, "seq": r.Ticket.Seq}

	if r.Ticket.Token != m.target || r.Ticket.Seq <= m.appliedSeq {
		m.log.WithFields(fields).Debug("discarding stale recommendations")
		return false
	}
	m.appliedSeq = r.Ticket.Seq

	if r.Err != nil {
		m.log.WithFields(fields).WithError(r.Err).Warn("recommendation fetch failed")
		return false
	}
	if r.Recommendation == nil {
		return false
	}

	m.queue = core.Queue{Tracks: append([]core.SimilarTrack(nil), r.Recommendation.Similar...)}
	stats := r.Recommendation.Stats
	m.stats = &stats

	m.log.WithFields(fields).WithField("count", m.queue.Len()).Debug("recommendations applied")
	return true
}

// Pop removes and returns the queue head.
func (m *Manager) Pop() (core.SimilarTrack, bool) {
	return m.queue.Pop()
}

// Items returns a copy of the queue.
func (m *Manager) Items() []core.SimilarTrack {
	return m.queue.Items()
}

func (m *Manager) Len() int {
	return m.queue.Len()
}

// Stats returns the stats of the applied result, or nil.
func (m *Manager) Stats() *core.RecommendStats {
	if m.stats == nil {
		return nil
	}
	s := *m.stats
	return &s
}

// Clear drops the queue, the stats, and the target.
func (m *Manager) Clear() {
	m.Retarget("")
}
