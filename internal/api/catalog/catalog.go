// Package catalog adapts the API client to the core collaborator interfaces.
package catalog

import (
	"context"
	"time"

	"github.com/tessro/segue/internal/api/client"
	"github.com/tessro/segue/internal/core"
)

// Catalog implements core.Catalog, core.SourceResolver and core.Recommender
// on top of the HTTP API.
type Catalog struct {
	client *client.Client
}

var (
	_ core.Catalog        = (*Catalog)(nil)
	_ core.SourceResolver = (*Catalog)(nil)
	_ core.Recommender    = (*Catalog)(nil)
)

// New creates a catalog backed by c.
func New(c *client.Client) *Catalog {
	return &Catalog{client: c}
}

// TopTracks returns the most submitted tracks, one page at a time.
func (c *Catalog) TopTracks(ctx context.Context, page int) ([]core.Track, error) {
	resp, err := c.client.TopTracks(ctx, page)
	if err != nil {
		return nil, err
	}
	return convertTracks(resp.Results), nil
}

// Search finds tracks matching query.
func (c *Catalog) Search(ctx context.Context, query string) ([]core.Track, error) {
	resp, err := c.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return convertTracks(resp.Results), nil
}

// Track looks up a single track.
func (c *Catalog) Track(ctx context.Context, mbid string) (*core.Track, error) {
	t, err := c.client.GetTrack(ctx, mbid)
	if err != nil {
		return nil, err
	}
	return convertTrack(t), nil
}

// Sources resolves the playable sources of a track.
func (c *Catalog) Sources(ctx context.Context, mbid string) ([]core.Source, error) {
	sources, err := c.client.GetSources(ctx, mbid)
	if err != nil {
		return nil, err
	}

	result := make([]core.Source, len(sources))
	for i, s := range sources {
		result[i] = core.Source{ID: s.ID, Provider: core.Provider(s.Provider)}
	}
	return result, nil
}

// Features returns the audio features of a track.
func (c *Catalog) Features(ctx context.Context, mbid string) (*core.TrackFeatures, error) {
	resp, err := c.client.GetFeatures(ctx, mbid)
	if err != nil {
		return nil, err
	}
	return &core.TrackFeatures{
		Track:       *convertTrack(&resp.Track),
		Features:    resp.Features,
		RawFeatures: resp.RawFeatures,
	}, nil
}

// Recommend asks the service for tracks similar to req.Target.
func (c *Catalog) Recommend(ctx context.Context, req *core.RecommendRequest) (*core.Recommendation, error) {
	payload, err := req.Tuning.Payload()
	if err != nil {
		return nil, err
	}

	listened := req.Listened
	if listened == nil {
		listened = []string{}
	}

	resp, err := c.client.Recommend(ctx, &client.RecommendRequest{
		MBID:           req.Target,
		ListenedMBIDs:  listened,
		Filters:        payload.Filters,
		FeatureWeights: payload.FeatureWeights,
		TotalWeights:   payload.TotalWeights,
		Limit:          req.Limit,
	})
	if err != nil {
		return nil, err
	}

	rec := &core.Recommendation{
		Target:  convertTrack(&resp.TargetTrack),
		Similar: make([]core.SimilarTrack, len(resp.SimilarList)),
		Stats: core.RecommendStats{
			CandidateCount: resp.Stats.CandidateCount,
			SearchTime:     resp.Stats.SearchTime,
			Mean:           resp.Stats.Mean,
			Std:            resp.Stats.Std,
			P95:            resp.Stats.P95,
			Max:            resp.Stats.Max,
		},
	}
	for i, s := range resp.SimilarList {
		rec.Similar[i] = core.SimilarTrack{
			Track:      *convertTrack(&s.Track),
			Similarity: s.Similarity,
		}
	}
	return rec, nil
}

func convertTracks(tracks []client.Track) []core.Track {
	result := make([]core.Track, len(tracks))
	for i := range tracks {
		result[i] = *convertTrack(&tracks[i])
	}
	return result
}

// convertTrack converts a wire track to a core track.
func convertTrack(t *client.Track) *core.Track {
	if t == nil {
		return nil
	}

	artists := make([]core.Artist, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = core.Artist{MBID: a.MBID, Name: a.Name}
	}

	return &core.Track{
		MBID:            t.MBID,
		Title:           t.Title,
		Artists:         artists,
		Album:           convertAlbum(t.Album),
		Duration:        time.Duration(t.Duration * float64(time.Second)),
		GenreDortmund:   t.GenreDortmund,
		GenreRosamerica: t.GenreRosamerica,
		Submissions:     t.Submissions,
	}
}

// convertAlbum converts a wire album. Unparseable dates are dropped.
func convertAlbum(a *client.Album) *core.Album {
	if a == nil {
		return nil
	}

	album := &core.Album{
		MBID:    a.MBID,
		Name:    a.Name,
		ArtLink: a.Links["art"],
	}
	if a.Date != nil {
		if d, err := time.Parse(time.DateOnly, *a.Date); err == nil {
			album.Date = &d
		}
	}
	return album
}
