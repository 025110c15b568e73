package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	segueerrors "github.com/tessro/segue/internal/errors"
	"github.com/tessro/segue/internal/tuning"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	opts.BaseURL = srv.URL + "/api/v1"
	opts.Log = logger
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params map[string]string
		want   string
	}{
		{"no params", "tracks/", nil, "tracks/"},
		{"empty params", "tracks/", map[string]string{}, "tracks/"},
		{"single param", "search/", map[string]string{"q": "test"}, "search/?q=test"},
		{"multiple params", "search/", map[string]string{"q": "test", "type": "track"}, "search/?q=test&type=track"},
		{"escaped", "search/", map[string]string{"q": "daft punk"}, "search/?q=daft+punk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildURL(tt.path, tt.params))
		})
	}
}

func TestAPIError(t *testing.T) {
	err := newAPIError(404, []byte(`{"detail":"Not found."}`))
	assert.Equal(t, "API error 404: Not found.", err.Error())
	assert.ErrorIs(t, err, segueerrors.ErrTrackNotFound)
	assert.True(t, IsNotFound(err))

	err = newAPIError(429, nil)
	assert.Equal(t, "API error 429: Too Many Requests", err.Error())
	assert.ErrorIs(t, err, segueerrors.ErrRateLimited)
}

func TestGetSources(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tracks/abc/sources/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`[{"id":"v1","provider":"youtube"},{"id":"v2","provider":"youtube"}]`))
	}, Options{})

	sources, err := c.GetSources(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []Source{{ID: "v1", Provider: "youtube"}, {ID: "v2", Provider: "youtube"}}, sources)
}

func TestTopTracks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tracks/", r.URL.Path)
		assert.Equal(t, "-submissions", r.URL.Query().Get("ordering"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[
			{"mbid":"t1","title":"One","artists":[{"mbid":"a1","name":"A"}],
			 "album":{"mbid":"al1","name":"Album","artists":[],"date":"1999-03-01"},
			 "duration":215.5,"genre_dortmund":"rock","genre_rosamerica":"roc","submissions":42}]}`))
	}, Options{})

	page, err := c.TopTracks(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "One", page.Results[0].Title)
	assert.Equal(t, "1999-03-01", *page.Results[0].Album.Date)
	assert.Nil(t, page.Next)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search/", r.URL.Path)
		assert.Equal(t, "around the world", r.URL.Query().Get("q"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"query":"around the world","type":"track","use_trigram":true,"response_time":0.01,"count":1,"results":[{"mbid":"t1","title":"Around the World","artists":[]}]}`))
	}, Options{})

	resp, err := c.Search(context.Background(), "around the world")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "t1", resp.Results[0].MBID)

	_, err = c.Search(context.Background(), "")
	assert.Error(t, err)
}

func TestRecommendPostsPayload(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/recommend/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"target_track":{"mbid":"x","title":"X","artists":[]},
			"similar_list":[{"mbid":"y","title":"Y","artists":[],"similarity":0.93}],
			"stats":{"candidate_count":900,"search_time":0.12,"mean":0.5,"std":null,"p95":0.9,"max":0.93}}`))
	}, Options{})

	payload, err := tuning.Default().Payload()
	require.NoError(t, err)

	resp, err := c.Recommend(context.Background(), &RecommendRequest{
		MBID:           "x",
		ListenedMBIDs:  []string{},
		Filters:        payload.Filters,
		FeatureWeights: payload.FeatureWeights,
		TotalWeights:   payload.TotalWeights,
		Limit:          50,
	})
	require.NoError(t, err)

	assert.Equal(t, "x", got["mbid"])
	assert.Equal(t, []any{}, got["listened_mbids"])
	assert.Equal(t, float64(50), got["limit"])
	filters := got["filters"].(map[string]any)
	assert.Equal(t, true, filters["same_genre"])
	assert.Equal(t, "rosamerica", filters["genre_classification"])
	assert.Len(t, got["feature_weights"], 16)
	assert.Equal(t, map[string]any{"similarity": 0.7, "popularity": 0.3}, got["total_weights"])

	require.Len(t, resp.SimilarList, 1)
	assert.Equal(t, 0.93, resp.SimilarList[0].Similarity)
	assert.Equal(t, "y", resp.SimilarList[0].MBID)
	assert.Nil(t, resp.Stats.Std)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"mbid":"t1","title":"One","artists":[]}`))
	}, Options{})

	track, err := c.GetTrack(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "One", track.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	}, Options{})

	_, err := c.GetTrack(context.Background(), "missing")
	assert.ErrorIs(t, err, segueerrors.ErrTrackNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{MaxRetries: -1})

	for i := 0; i < breakerFailures; i++ {
		_, err := c.GetSources(context.Background(), "x")
		require.Error(t, err)
	}

	_, err := c.GetSources(context.Background(), "x")
	assert.ErrorIs(t, err, segueerrors.ErrServiceUnavailable)
	assert.Equal(t, int32(breakerFailures), calls.Load())
}

func TestContextDeadline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetSources(ctx, "slow")
	assert.ErrorIs(t, err, segueerrors.ErrTimeout)
}

func TestRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, Options{RateLimit: 20})

	start := time.Now()
	for i := 0; i < 25; i++ {
		_, err := c.GetSources(context.Background(), "x")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}
