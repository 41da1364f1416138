package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"streamix/services/catalog"
	"streamix/services/profiles"
	"streamix/services/search"
)

type searchService interface {
	Search(ctx context.Context, query string, isKid bool) (search.Result, error)
	MinQueryLength() int
}

var _ searchService = (*search.Service)(nil)

type SearchHandler struct {
	Service  searchService
	Profiles profileFlags
}

func NewSearchHandler(service searchService, profilesSvc profileFlags) *SearchHandler {
	return &SearchHandler{Service: service, Profiles: profilesSvc}
}

// Search runs a catalog-wide search. A query below the minimum length is a
// client error; a query superseded mid-flight returns 409 so the client
// knows to drop the response.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	isKid := false
	if raw := r.URL.Query().Get("profileId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			http.Error(w, "invalid profileId", http.StatusBadRequest)
			return
		}
		profile, found := h.Profiles.Get(id)
		if !found {
			http.Error(w, profiles.ErrProfileNotFound.Error(), http.StatusNotFound)
			return
		}
		isKid = profile.IsKid
	}

	result, err := h.Service.Search(r.Context(), query, isKid)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, search.ErrQueryTooShort):
			status = http.StatusBadRequest
		case errors.Is(err, search.ErrSuperseded):
			status = http.StatusConflict
		case errors.Is(err, catalog.ErrNotConfigured):
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *SearchHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
