package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"streamix/api"
	"streamix/config"
	"streamix/handlers"
	"streamix/services/catalog"
	"streamix/services/mylist"
	"streamix/services/parental"
	"streamix/services/pinlock"
	"streamix/services/playback"
	"streamix/services/profiles"
	"streamix/services/progress"
	"streamix/services/search"
	"streamix/services/session"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("streamix backend starting...")

	configPath := os.Getenv("STREAMIX_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// File logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	storageDir := settings.Storage.Directory
	if storageDir == "" {
		storageDir = "cache"
	}

	profileService, err := profiles.NewService(storageDir)
	if err != nil {
		log.Fatalf("failed to initialise profiles: %v", err)
	}

	progressService, err := progress.NewService(storageDir, settings.Playback.ContinueWatchingLimit)
	if err != nil {
		log.Fatalf("failed to initialise watch progress: %v", err)
	}

	mylistService, err := mylist.NewService(storageDir)
	if err != nil {
		log.Fatalf("failed to initialise my list: %v", err)
	}

	sessionService, err := session.NewService(storageDir)
	if err != nil {
		log.Fatalf("failed to initialise session marker: %v", err)
	}

	if marker, err := sessionService.Get(); err == nil {
		slog.Info("resume marker found",
			"profile_id", marker.ProfileID,
			"app_state", marker.AppState,
			"saved_at", marker.SavedAt,
		)
	} else if !errors.Is(err, session.ErrNoMarker) {
		log.Printf("warning: resume marker unreadable: %v", err)
	}

	parentalService := parental.NewService()

	catalogClient := catalog.NewClient(
		settings.Catalog.URL,
		settings.Catalog.Username,
		settings.Catalog.Password,
		time.Duration(settings.Catalog.TimeoutSec)*time.Second,
		settings.Catalog.Retries,
	)
	if !catalogClient.Configured() {
		log.Printf("warning: no catalog portal configured; browse and search will be unavailable")
	}
	catalogService := catalog.NewService(catalogClient, parentalService, settings.Search.ConcurrentFetch)
	searchService := search.NewService(catalogClient, parentalService, settings.Search.MinQueryLength)

	pinMachine := pinlock.NewMachine(
		profileService,
		profileService,
		pinlock.Events{
			Unlocked: func(profileID int) {
				log.Printf("[main] profile %d unlocked", profileID)
			},
			Deleted: func(profileID int) {
				log.Printf("[main] profile %d deleted after pin challenge", profileID)
			},
		},
		pinlock.WithDelays(
			time.Duration(settings.PinLock.SuccessDelayMs)*time.Millisecond,
			time.Duration(settings.PinLock.RetryDelayMs)*time.Millisecond,
		),
	)

	commandQueue := playback.NewCommandQueue()
	playbackController := playback.NewController(commandQueue, progressService, settings.Playback.MinProgressSeconds)

	r := mux.NewRouter()
	api.Register(r, api.Handlers{
		Profiles: handlers.NewProfilesHandler(profileService),
		PinLock:  handlers.NewPinLockHandler(pinMachine),
		Progress: handlers.NewProgressHandler(progressService, profileService, parentalService),
		MyList:   handlers.NewMyListHandler(mylistService, profileService, parentalService),
		Catalog:  handlers.NewCatalogHandler(catalogService, profileService),
		Search:   handlers.NewSearchHandler(searchService, profileService),
		Playback: handlers.NewPlaybackHandler(playbackController, commandQueue),
		Session:  handlers.NewSessionHandler(sessionService, profileService),
	})

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Closing the playback session flushes any progress past the threshold.
	if _, err := playbackController.Close(); err != nil && !errors.Is(err, playback.ErrNoSession) {
		log.Printf("playback teardown error: %v", err)
	}
	pinMachine.Cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
