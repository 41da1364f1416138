package models

import "time"

// SessionState is the playback session lifecycle phase.
type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionLoading SessionState = "loading"
	SessionPlaying SessionState = "playing"
	SessionPaused  SessionState = "paused"
	SessionEnded   SessionState = "ended"
)

// PlayableContent identifies what a playback session was opened for.
type PlayableContent struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"` // movie | episode
	Source string      `json:"source"`
	Meta   DisplayMeta `json:"meta"`
}

// SessionSnapshot is a point-in-time copy of the active session's transient
// state, safe to hand across goroutines.
type SessionSnapshot struct {
	ID           string          `json:"id"`
	ProfileID    int             `json:"profileId"`
	Content      PlayableContent `json:"content"`
	State        SessionState    `json:"state"`
	ResumeOffset float64         `json:"resumeOffset"`
	Position     float64         `json:"position"`
	Duration     float64         `json:"duration"`
	Percent      float64         `json:"percent"`
	Volume       float64         `json:"volume"`
	Muted        bool            `json:"muted"`
	Fullscreen   bool            `json:"fullscreen"`
	StartedAt    time.Time       `json:"startedAt"`
}
