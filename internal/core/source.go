package core

import (
	"net/url"
	"strings"
)

// Provider identifies where a playable source is hosted.
type Provider string

const (
	ProviderYouTube Provider = "youtube"
)

// Source is a playable media reference resolved for a track.
type Source struct {
	ID       string   `json:"id"`
	Provider Provider `json:"provider"`
}

// URL returns a locator the media widget can open.
func (s Source) URL() string {
	switch Provider(strings.ToLower(string(s.Provider))) {
	case ProviderYouTube:
		return "https://www.youtube.com/watch?v=" + url.QueryEscape(s.ID)
	default:
		return s.ID
	}
}
