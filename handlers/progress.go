package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"streamix/models"
	"streamix/services/parental"
	"streamix/services/progress"

	"github.com/gorilla/mux"
)

type progressService interface {
	Get(profileID int) []models.WatchProgressRecord
	FindByContentID(profileID int, contentID string) (models.WatchProgressRecord, bool)
	Upsert(rec models.WatchProgressRecord) error
	Remove(profileID int, contentID string) error
}

var _ progressService = (*progress.Service)(nil)

type ProgressHandler struct {
	Service  progressService
	Profiles profileFlags
	Parental *parental.Service
}

func NewProgressHandler(service progressService, profilesSvc profileFlags, parentalSvc *parental.Service) *ProgressHandler {
	return &ProgressHandler{Service: service, Profiles: profilesSvc, Parental: parentalSvc}
}

// List returns the profile's continue-watching records, newest first. Rows a
// kid profile must not see are dropped, whatever path wrote them.
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	profile, _ := h.Profiles.Get(id)
	records := parental.Filter(h.Parental, profile.IsKid, h.Service.Get(id), func(rec models.WatchProgressRecord) string {
		return rec.Meta.AgeRating
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// Get returns the record for one content item, 404 when absent.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}
	contentID := strings.TrimSpace(mux.Vars(r)["contentID"])
	if contentID == "" {
		http.Error(w, "content id is required", http.StatusBadRequest)
		return
	}

	rec, found := h.Service.FindByContentID(id, contentID)
	if !found {
		http.Error(w, "no progress recorded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Upsert writes a progress record directly, bypassing the session
// controller. Used by clients that manage playback locally.
func (h *ProgressHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	var rec models.WatchProgressRecord
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec.ProfileID = id

	if err := h.Service.Upsert(rec); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, progress.ErrContentIDRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove dismisses a continue-watching entry.
func (h *ProgressHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}
	contentID := strings.TrimSpace(mux.Vars(r)["contentID"])
	if contentID == "" {
		http.Error(w, "content id is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.Remove(id, contentID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProgressHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
