package models

import "time"

// Saved item types. Series are saved at series level, unlike progress.
const (
	ItemTypeMovie  = "movie"
	ItemTypeSeries = "series"
)

// SavedItem is one bookmarked entry in a profile's list, unique by
// (profileId, contentId).
type SavedItem struct {
	ContentID string      `json:"contentId"`
	ProfileID int         `json:"profileId"`
	ItemType  string      `json:"itemType"` // movie | series
	AddedAt   time.Time   `json:"addedAt"`
	Meta      DisplayMeta `json:"meta"`
}
