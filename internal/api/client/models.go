package client

import "github.com/tessro/segue/internal/tuning"

// Artist is a credited artist.
type Artist struct {
	MBID  string            `json:"mbid"`
	Name  string            `json:"name"`
	Links map[string]string `json:"links,omitempty"`
}

// Album is a release.
type Album struct {
	MBID    string            `json:"mbid"`
	Name    string            `json:"name"`
	Artists []Artist          `json:"artists"`
	Date    *string           `json:"date"` // ISO date, nullable
	Links   map[string]string `json:"links,omitempty"`
}

// Track is a catalog recording.
type Track struct {
	MBID            string            `json:"mbid"`
	Title           string            `json:"title"`
	Artists         []Artist          `json:"artists"`
	Album           *Album            `json:"album"`
	Duration        float64           `json:"duration"` // seconds
	GenreDortmund   string            `json:"genre_dortmund"`
	GenreRosamerica string            `json:"genre_rosamerica"`
	Submissions     int               `json:"submissions"`
	Links           map[string]string `json:"links,omitempty"`
}

// SimilarTrack is a track with a similarity score.
type SimilarTrack struct {
	Track
	Similarity float64 `json:"similarity"`
}

// Paginated is a page of results.
type Paginated[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// SearchResponse is the response from the search endpoint.
type SearchResponse struct {
	Query        string  `json:"query"`
	Type         string  `json:"type"`
	UseTrigram   bool    `json:"use_trigram"`
	ResponseTime float64 `json:"response_time"`
	Count        int     `json:"count"`
	Results      []Track `json:"results"`
}

// Source is a playable media reference.
type Source struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// TrackFeatures is the response from the features endpoint.
type TrackFeatures struct {
	Track       Track          `json:"track"`
	Features    map[string]any `json:"features"`
	RawFeatures map[string]any `json:"raw_features"`
}

// RecommendRequest is the body of a recommend call.
type RecommendRequest struct {
	MBID           string                `json:"mbid"`
	ListenedMBIDs  []string              `json:"listened_mbids"`
	Filters        tuning.FiltersPayload `json:"filters"`
	FeatureWeights map[string]float64    `json:"feature_weights"`
	TotalWeights   tuning.TotalWeights   `json:"total_weights"`
	Limit          int                   `json:"limit,omitempty"`
}

// RecommendStats describes a recommendation run.
type RecommendStats struct {
	CandidateCount int      `json:"candidate_count"`
	SearchTime     float64  `json:"search_time"`
	Mean           *float64 `json:"mean"`
	Std            *float64 `json:"std"`
	P95            *float64 `json:"p95"`
	Max            *float64 `json:"max"`
}

// RecommendResponse is the response from the recommend endpoint.
type RecommendResponse struct {
	TargetTrack Track          `json:"target_track"`
	SimilarList []SimilarTrack `json:"similar_list"`
	Stats       RecommendStats `json:"stats"`
}
