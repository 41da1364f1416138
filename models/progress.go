package models

import "time"

// Content types a progress record can describe. For series content the
// record is keyed by the episode id, never the series id.
const (
	ContentTypeMovie   = "movie"
	ContentTypeEpisode = "episode"
)

// DisplayMeta carries everything a continue-watching or my-list row needs to
// render without another catalog round trip.
type DisplayMeta struct {
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Subtitle  string `json:"subtitle,omitempty"` // e.g. "S1:E2"
	Source    string `json:"source,omitempty"`
	Backdrop  string `json:"backdrop,omitempty"`
	Year      string `json:"year,omitempty"`
	Rating    string `json:"rating,omitempty"`
	AgeRating string `json:"ageRating,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Plot      string `json:"plot,omitempty"`
}

// WatchProgressRecord is one resumable position for a profile/content pair.
// At most one record exists per (profileId, contentId).
type WatchProgressRecord struct {
	ContentID       string      `json:"contentId"`
	ProfileID       int         `json:"profileId"`
	ContentType     string      `json:"contentType"` // movie | episode
	PercentComplete float64     `json:"percentComplete"`
	PositionSeconds float64     `json:"positionSeconds"`
	TotalSeconds    float64     `json:"totalSeconds"`
	LastWatchedAt   time.Time   `json:"lastWatchedAt"`
	Meta            DisplayMeta `json:"meta"`
}
