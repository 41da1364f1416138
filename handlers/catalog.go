package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"streamix/models"
	"streamix/services/catalog"
	"streamix/services/profiles"

	"github.com/gorilla/mux"
)

type catalogService interface {
	Browse(ctx context.Context, kind models.CatalogKind, isKid bool) (catalog.HomeView, error)
	SeriesDetail(ctx context.Context, seriesID int) (*models.SeriesInfo, error)
	Client() *catalog.Client
}

var _ catalogService = (*catalog.Service)(nil)

// profileFlags resolves the maturity policy of the requesting profile.
type profileFlags interface {
	Get(id int) (models.Profile, bool)
}

var _ profileFlags = (*profiles.Service)(nil)

type CatalogHandler struct {
	Service  catalogService
	Profiles profileFlags
}

func NewCatalogHandler(service catalogService, profilesSvc profileFlags) *CatalogHandler {
	return &CatalogHandler{Service: service, Profiles: profilesSvc}
}

// requestingProfile reads the profileId query parameter and resolves its kid
// flag. An absent parameter is treated as an unrestricted viewer.
func (h *CatalogHandler) requestingProfile(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("profileId")
	if raw == "" {
		return false, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return false, errors.New("invalid profileId")
	}
	profile, found := h.Profiles.Get(id)
	if !found {
		return false, profiles.ErrProfileNotFound
	}
	return profile.IsKid, nil
}

// Browse assembles the home view for one catalog half, filtered by the
// requesting profile's maturity policy.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	kind := models.CatalogKind(mux.Vars(r)["kind"])

	isKid, err := h.requestingProfile(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, profiles.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	view, err := h.Service.Browse(r.Context(), kind, isKid)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, catalog.ErrUnknownKind):
			status = http.StatusBadRequest
		case errors.Is(err, catalog.ErrNotConfigured):
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// SeriesInfo returns the seasons and episodes for one series.
func (h *CatalogHandler) SeriesInfo(w http.ResponseWriter, r *http.Request) {
	seriesID, err := strconv.Atoi(mux.Vars(r)["seriesID"])
	if err != nil || seriesID <= 0 {
		http.Error(w, "series id is required", http.StatusBadRequest)
		return
	}

	info, err := h.Service.SeriesDetail(r.Context(), seriesID)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, catalog.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// StreamURL resolves the direct playback URL for a stream.
func (h *CatalogHandler) StreamURL(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := models.CatalogKind(vars["kind"])
	streamID, err := strconv.Atoi(vars["streamID"])
	if err != nil || streamID <= 0 {
		http.Error(w, "stream id is required", http.StatusBadRequest)
		return
	}

	url := h.Service.Client().StreamURL(kind, streamID, r.URL.Query().Get("ext"))
	if url == "" {
		http.Error(w, catalog.ErrNotConfigured.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// Status performs the portal account handshake.
func (h *CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	login, err := h.Service.Client().Login(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, catalog.ErrNotConfigured):
			status = http.StatusServiceUnavailable
		case errors.Is(err, catalog.ErrUnauthorized):
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(login)
}

func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
