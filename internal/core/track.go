package core

import (
	"strings"
	"time"
)

// Artist is a credited artist on a track or album.
type Artist struct {
	MBID string `json:"mbid"`
	Name string `json:"name"`
}

// Album is the release a track appears on.
type Album struct {
	MBID    string     `json:"mbid"`
	Name    string     `json:"name"`
	Date    *time.Time `json:"date,omitempty"`
	ArtLink string     `json:"art,omitempty"`
}

// Year returns the release year, or 0 if unknown.
func (a *Album) Year() int {
	if a == nil || a.Date == nil {
		return 0
	}
	return a.Date.Year()
}

// Track represents a catalog recording. Tracks are read-only once fetched.
type Track struct {
	MBID            string        `json:"mbid"`
	Title           string        `json:"title"`
	Artists         []Artist      `json:"artists"`
	Album           *Album        `json:"album,omitempty"`
	Duration        time.Duration `json:"duration"`
	GenreDortmund   string        `json:"genre_dortmund"`
	GenreRosamerica string        `json:"genre_rosamerica"`
	Submissions     int           `json:"submissions"`
}

// ArtistNames joins the credited artists, or returns "Unknown artist".
func (t *Track) ArtistNames() string {
	if t == nil || len(t.Artists) == 0 {
		return "Unknown artist"
	}
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// AlbumName returns the album name, or "" if the track has no album.
func (t *Track) AlbumName() string {
	if t == nil || t.Album == nil {
		return ""
	}
	return t.Album.Name
}

// SimilarTrack is a track ranked by the recommendation service.
type SimilarTrack struct {
	Track
	Similarity float64 `json:"similarity"`
}

// RecommendStats describes the similarity distribution of a recommendation
// run. Display-only.
type RecommendStats struct {
	CandidateCount int      `json:"candidate_count"`
	SearchTime     float64  `json:"search_time"`
	Mean           *float64 `json:"mean"`
	Std            *float64 `json:"std"`
	P95            *float64 `json:"p95"`
	Max            *float64 `json:"max"`
}

// TrackFeatures holds the normalized and raw audio features of a track.
type TrackFeatures struct {
	Track       Track          `json:"track"`
	Features    map[string]any `json:"features"`
	RawFeatures map[string]any `json:"raw_features"`
}
