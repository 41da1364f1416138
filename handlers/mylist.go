package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"streamix/models"
	"streamix/services/mylist"
	"streamix/services/parental"

	"github.com/gorilla/mux"
)

type mylistService interface {
	List(profileID int) []models.SavedItem
	Contains(profileID int, contentID string) bool
	Add(item models.SavedItem) error
	Remove(profileID int, contentID string) error
}

var _ mylistService = (*mylist.Service)(nil)

type MyListHandler struct {
	Service  mylistService
	Profiles profileFlags
	Parental *parental.Service
}

func NewMyListHandler(service mylistService, profilesSvc profileFlags, parentalSvc *parental.Service) *MyListHandler {
	return &MyListHandler{Service: service, Profiles: profilesSvc, Parental: parentalSvc}
}

// List returns the profile's saved items, newest first, with items blocked
// by the profile's maturity policy dropped.
func (h *MyListHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	profile, _ := h.Profiles.Get(id)
	items := parental.Filter(h.Parental, profile.IsKid, h.Service.List(id), func(item models.SavedItem) string {
		return item.Meta.AgeRating
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Contains reports saved-list membership for one item.
func (h *MyListHandler) Contains(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"saved": h.Service.Contains(id, contentID)})
}

// Add saves an item. Saving one already on the list succeeds silently.
func (h *MyListHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	var item models.SavedItem
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item.ProfileID = id

	if err := h.Service.Add(item); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mylist.ErrContentIDRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove takes an item off the list. Removing an absent item succeeds.
func (h *MyListHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

func (h *MyListHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
