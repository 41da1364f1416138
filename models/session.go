package models

import "time"

// App phases coarse enough to decide whether startup can skip straight into
// the app shell.
const (
	AppStateProfiles = "profiles"
	AppStateApp      = "app"
)

// ResumeMarker is the lightweight resume-on-restart record: which profile
// was active and which coarse phase the app was in.
type ResumeMarker struct {
	ProfileID int       `json:"profileId"`
	AppState  string    `json:"appState"`
	SavedAt   time.Time `json:"savedAt"`
}
