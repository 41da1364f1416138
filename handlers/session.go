package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"streamix/models"
	"streamix/services/session"
)

type sessionService interface {
	Get() (models.ResumeMarker, error)
	Set(profileID int, appState string) error
	Clear() error
}

var _ sessionService = (*session.Service)(nil)

// SessionHandler exposes the resume-on-restart marker.
type SessionHandler struct {
	Service  sessionService
	Profiles profileFlags
}

func NewSessionHandler(service sessionService, profilesSvc profileFlags) *SessionHandler {
	return &SessionHandler{Service: service, Profiles: profilesSvc}
}

// Get returns the stored marker, 404 when none exists. A marker pointing at
// a deleted profile is cleared and reported as absent.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	marker, err := h.Service.Get()
	if err != nil {
		if errors.Is(err, session.ErrNoMarker) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if marker.ProfileID > 0 {
		if _, found := h.Profiles.Get(marker.ProfileID); !found {
			if err := h.Service.Clear(); err == nil {
				http.Error(w, session.ErrNoMarker.Error(), http.StatusNotFound)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(marker)
}

// Set records the active profile and app phase.
func (h *SessionHandler) Set(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfileID int    `json:"profileId"`
		AppState  string `json:"appState"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.Set(body.ProfileID, body.AppState); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear wipes the marker, returning startup to profile selection.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
