package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"streamix/models"
	"streamix/services/playback"
)

type playbackController interface {
	Open(profileID int, content models.PlayableContent, resumeHint float64) (models.SessionSnapshot, error)
	HandleLoaded(duration float64) error
	Play() error
	Pause() error
	TogglePlay() error
	HandleTimeUpdate(position, duration float64) error
	Seek(percent float64) error
	SetVolume(level float64) error
	ToggleMute() error
	ToggleFullscreen() error
	HandleEnded() error
	Close() (models.SessionSnapshot, error)
	Snapshot() (models.SessionSnapshot, error)
}

var _ playbackController = (*playback.Controller)(nil)

// PlaybackHandler exposes the single playback session over HTTP. Surface
// events (loaded, timeupdate, ended) flow in through the events endpoint;
// viewer commands have their own routes.
type PlaybackHandler struct {
	Controller playbackController
	Queue      *playback.CommandQueue
}

func NewPlaybackHandler(controller playbackController, queue *playback.CommandQueue) *PlaybackHandler {
	return &PlaybackHandler{Controller: controller, Queue: queue}
}

func playbackStatus(err error) int {
	switch {
	case errors.Is(err, playback.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, playback.ErrContentRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Open starts a session for one content item.
func (h *PlaybackHandler) Open(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfileID  int                    `json:"profileId"`
		Content    models.PlayableContent `json:"content"`
		ResumeHint float64                `json:"resumeHint"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.ProfileID <= 0 {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	snap, err := h.Controller.Open(body.ProfileID, body.Content, body.ResumeHint)
	if err != nil {
		http.Error(w, err.Error(), playbackStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(snap)
}

// Event ingests a player surface event.
func (h *PlaybackHandler) Event(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type     string  `json:"type"` // loaded | timeupdate | ended
		Position float64 `json:"position"`
		Duration float64 `json:"duration"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch body.Type {
	case "loaded":
		err = h.Controller.HandleLoaded(body.Duration)
	case "timeupdate":
		err = h.Controller.HandleTimeUpdate(body.Position, body.Duration)
	case "ended":
		err = h.Controller.HandleEnded()
	default:
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), playbackStatus(err))
		return
	}

	h.writeSnapshot(w)
}

// Play resumes or starts playback.
func (h *PlaybackHandler) Play(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.Controller.Play)
}

// Pause stops playback without closing the session.
func (h *PlaybackHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.Controller.Pause)
}

// TogglePlay flips between playing and paused.
func (h *PlaybackHandler) TogglePlay(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.Controller.TogglePlay)
}

// Seek moves the playhead to a percentage of the running time.
func (h *PlaybackHandler) Seek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Percent float64 `json:"percent"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.command(w, func() error { return h.Controller.Seek(body.Percent) })
}

// SetVolume sets the output level.
func (h *PlaybackHandler) SetVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level float64 `json:"level"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.command(w, func() error { return h.Controller.SetVolume(body.Level) })
}

// ToggleMute flips mute.
func (h *PlaybackHandler) ToggleMute(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.Controller.ToggleMute)
}

// ToggleFullscreen asks the surface to change display mode.
func (h *PlaybackHandler) ToggleFullscreen(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.Controller.ToggleFullscreen)
}

// Close tears the session down and returns its final snapshot.
func (h *PlaybackHandler) Close(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Controller.Close()
	if err != nil {
		http.Error(w, err.Error(), playbackStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// State returns the current session snapshot.
func (h *PlaybackHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w)
}

// Commands drains the directives queued for the player surface.
func (h *PlaybackHandler) Commands(w http.ResponseWriter, r *http.Request) {
	cmds := h.Queue.Drain()
	if cmds == nil {
		cmds = []playback.Command{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cmds)
}

func (h *PlaybackHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *PlaybackHandler) command(w http.ResponseWriter, fn func() error) {
	if err := fn(); err != nil {
		http.Error(w, err.Error(), playbackStatus(err))
		return
	}
	h.writeSnapshot(w)
}

func (h *PlaybackHandler) writeSnapshot(w http.ResponseWriter) {
	snap, err := h.Controller.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), playbackStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
