package client

import (
	"context"
	"errors"
	"net/url"
	"strconv"
)

// TopTracks returns a page of tracks ordered by submission count.
func (c *Client) TopTracks(ctx context.Context, page int) (*Paginated[Track], error) {
	params := map[string]string{"ordering": "-submissions"}
	if page > 1 {
		params["page"] = strconv.Itoa(page)
	}

	var resp Paginated[Track]
	if err := c.Get(ctx, BuildURL("tracks/", params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTrack returns a single track.
func (c *Client) GetTrack(ctx context.Context, mbid string) (*Track, error) {
	var track Track
	if err := c.Get(ctx, "tracks/"+url.PathEscape(mbid)+"/", &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// Search performs a track search.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	if query == "" {
		return nil, errors.New("search query cannot be empty")
	}

	var resp SearchResponse
	params := map[string]string{"q": query, "type": "track"}
	if err := c.Get(ctx, BuildURL("search/", params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSources returns the playable sources for a track. The first is
// authoritative.
func (c *Client) GetSources(ctx context.Context, mbid string) ([]Source, error) {
	var sources []Source
	if err := c.Get(ctx, "tracks/"+url.PathEscape(mbid)+"/sources/", &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// GetFeatures returns the audio features of a track.
func (c *Client) GetFeatures(ctx context.Context, mbid string) (*TrackFeatures, error) {
	var resp TrackFeatures
	if err := c.Get(ctx, "tracks/"+url.PathEscape(mbid)+"/features/", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recommend returns tracks similar to req.MBID.
func (c *Client) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendResponse, error) {
	var resp RecommendResponse
	if err := c.Post(ctx, "recommend/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
