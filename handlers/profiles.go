package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"streamix/models"
	"streamix/services/profiles"

	"github.com/gorilla/mux"
)

type profilesService interface {
	List() []models.Profile
	Get(id int) (models.Profile, bool)
	Create(input profiles.CreateInput) (models.Profile, error)
	Rename(id int, name string) (models.Profile, error)
	SetAvatar(id int, avatar string) (models.Profile, error)
	SetKid(id int, isKid bool) (models.Profile, error)
	SetPin(id int, pin string) (models.Profile, error)
	ClearPin(id int) (models.Profile, error)
	VerifyPin(id int, pin string) error
	Delete(id int) error
}

var _ profilesService = (*profiles.Service)(nil)

type ProfilesHandler struct {
	Service profilesService
}

func NewProfilesHandler(service profilesService) *ProfilesHandler {
	return &ProfilesHandler{Service: service}
}

func profileID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["profileID"])
	return id, err == nil && id > 0
}

func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.List())
}

func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	profile, found := h.Service.Get(id)
	if !found {
		http.Error(w, profiles.ErrProfileNotFound.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func (h *ProfilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
		IsKid  bool   `json:"isKid"`
		Locked bool   `json:"locked"`
		Pin    string `json:"pin"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.Service.Create(profiles.CreateInput{
		Name:   body.Name,
		Avatar: body.Avatar,
		IsKid:  body.IsKid,
		Locked: body.Locked,
		Pin:    body.Pin,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, profiles.ErrNameRequired),
			errors.Is(err, profiles.ErrPinRequired),
			errors.Is(err, profiles.ErrPinFormat):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profile)
}

func (h *ProfilesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.Service.Rename(id, body.Name)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, profiles.ErrNameRequired):
			status = http.StatusBadRequest
		case errors.Is(err, profiles.ErrProfileNotFound):
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func (h *ProfilesHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Avatar string `json:"avatar"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.Service.SetAvatar(id, body.Avatar)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, profiles.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func (h *ProfilesHandler) SetKid(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		IsKid bool `json:"isKid"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.Service.SetKid(id, body.IsKid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, profiles.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// SetPin sets or replaces a profile's PIN and marks the profile locked.
func (h *ProfilesHandler) SetPin(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Pin string `json:"pin"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.Service.SetPin(id, body.Pin)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, profiles.ErrProfileNotFound):
			status = http.StatusNotFound
		case errors.Is(err, profiles.ErrPinRequired), errors.Is(err, profiles.ErrPinFormat):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// ClearPin removes a profile's PIN and unlocks it.
func (h *ProfilesHandler) ClearPin(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	profile, err := h.Service.ClearPin(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, profiles.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// VerifyPin checks a candidate PIN without opening a challenge dialog.
func (h *ProfilesHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Pin string `json:"pin"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.VerifyPin(id, body.Pin); err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, profiles.ErrProfileNotFound):
			status = http.StatusNotFound
		case errors.Is(err, profiles.ErrPinNotSet):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"valid": true})
}

func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(r)
	if !ok {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(id); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, profiles.ErrProfileNotFound):
			status = http.StatusNotFound
		case errors.Is(err, profiles.ErrLastProfile):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfilesHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
