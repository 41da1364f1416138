package api

import (
	"net/http"

	"streamix/handlers"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers bundles everything Register mounts.
type Handlers struct {
	Profiles *handlers.ProfilesHandler
	PinLock  *handlers.PinLockHandler
	Progress *handlers.ProgressHandler
	MyList   *handlers.MyListHandler
	Catalog  *handlers.CatalogHandler
	Search   *handlers.SearchHandler
	Playback *handlers.PlaybackHandler
	Session  *handlers.SessionHandler
}

// Register mounts all API endpoints onto the provided router under /api.
func Register(r *mux.Router, h Handlers) {
	api := r.PathPrefix("/api").Subrouter()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})
	api.Use(c.Handler)

	// Profiles
	api.HandleFunc("/profiles", h.Profiles.List).Methods(http.MethodGet)
	api.HandleFunc("/profiles", h.Profiles.Create).Methods(http.MethodPost)
	api.HandleFunc("/profiles", h.Profiles.Options).Methods(http.MethodOptions)
	api.HandleFunc("/profiles/{profileID}", h.Profiles.Get).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}", h.Profiles.Rename).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{profileID}", h.Profiles.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/profiles/{profileID}", h.Profiles.Options).Methods(http.MethodOptions)
	api.HandleFunc("/profiles/{profileID}/avatar", h.Profiles.SetAvatar).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{profileID}/kid", h.Profiles.SetKid).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{profileID}/pin", h.Profiles.SetPin).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{profileID}/pin", h.Profiles.ClearPin).Methods(http.MethodDelete)
	api.HandleFunc("/profiles/{profileID}/pin/verify", h.Profiles.VerifyPin).Methods(http.MethodPost)

	// PIN challenge dialog
	api.HandleFunc("/pinlock", h.PinLock.State).Methods(http.MethodGet)
	api.HandleFunc("/pinlock", h.PinLock.Options).Methods(http.MethodOptions)
	api.HandleFunc("/pinlock/begin", h.PinLock.Begin).Methods(http.MethodPost)
	api.HandleFunc("/pinlock/digit", h.PinLock.Digit).Methods(http.MethodPost)
	api.HandleFunc("/pinlock/backspace", h.PinLock.Backspace).Methods(http.MethodPost)
	api.HandleFunc("/pinlock/cancel", h.PinLock.Cancel).Methods(http.MethodPost)

	// Watch progress / continue watching
	api.HandleFunc("/profiles/{profileID}/progress", h.Progress.List).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/progress", h.Progress.Upsert).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{profileID}/progress", h.Progress.Options).Methods(http.MethodOptions)
	api.HandleFunc("/profiles/{profileID}/progress/{contentID}", h.Progress.Get).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/progress/{contentID}", h.Progress.Remove).Methods(http.MethodDelete)

	// My list
	api.HandleFunc("/profiles/{profileID}/mylist", h.MyList.List).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/mylist", h.MyList.Add).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{profileID}/mylist", h.MyList.Options).Methods(http.MethodOptions)
	api.HandleFunc("/profiles/{profileID}/mylist/{contentID}", h.MyList.Contains).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/mylist/{contentID}", h.MyList.Remove).Methods(http.MethodDelete)

	// Catalog
	api.HandleFunc("/catalog/status", h.Catalog.Status).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{kind}/browse", h.Catalog.Browse).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{kind}/browse", h.Catalog.Options).Methods(http.MethodOptions)
	api.HandleFunc("/catalog/series/{seriesID}/info", h.Catalog.SeriesInfo).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{kind}/{streamID}/url", h.Catalog.StreamURL).Methods(http.MethodGet)

	// Search
	api.HandleFunc("/search", h.Search.Search).Methods(http.MethodGet)
	api.HandleFunc("/search", h.Search.Options).Methods(http.MethodOptions)

	// Playback session
	api.HandleFunc("/playback", h.Playback.State).Methods(http.MethodGet)
	api.HandleFunc("/playback", h.Playback.Options).Methods(http.MethodOptions)
	api.HandleFunc("/playback/open", h.Playback.Open).Methods(http.MethodPost)
	api.HandleFunc("/playback/events", h.Playback.Event).Methods(http.MethodPost)
	api.HandleFunc("/playback/play", h.Playback.Play).Methods(http.MethodPost)
	api.HandleFunc("/playback/pause", h.Playback.Pause).Methods(http.MethodPost)
	api.HandleFunc("/playback/toggle", h.Playback.TogglePlay).Methods(http.MethodPost)
	api.HandleFunc("/playback/seek", h.Playback.Seek).Methods(http.MethodPost)
	api.HandleFunc("/playback/volume", h.Playback.SetVolume).Methods(http.MethodPost)
	api.HandleFunc("/playback/mute", h.Playback.ToggleMute).Methods(http.MethodPost)
	api.HandleFunc("/playback/fullscreen", h.Playback.ToggleFullscreen).Methods(http.MethodPost)
	api.HandleFunc("/playback/close", h.Playback.Close).Methods(http.MethodPost)
	api.HandleFunc("/playback/commands", h.Playback.Commands).Methods(http.MethodGet)

	// Resume marker
	api.HandleFunc("/session", h.Session.Get).Methods(http.MethodGet)
	api.HandleFunc("/session", h.Session.Set).Methods(http.MethodPut)
	api.HandleFunc("/session", h.Session.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/session", h.Session.Options).Methods(http.MethodOptions)
}
