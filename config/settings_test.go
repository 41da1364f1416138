package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"streamix/config"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	mgr := config.NewManager(path)

	settings, err := mgr.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if settings.Server.Port != 8484 {
		t.Fatalf("expected default port 8484, got %d", settings.Server.Port)
	}
	if settings.Playback.ContinueWatchingLimit != 20 {
		t.Fatalf("expected default continue watching limit 20, got %d", settings.Playback.ContinueWatchingLimit)
	}
	if settings.Playback.MinProgressSeconds != 5 {
		t.Fatalf("expected default progress threshold 5, got %v", settings.Playback.MinProgressSeconds)
	}
	if settings.Search.MinQueryLength != 3 || settings.Search.DebounceMs != 500 {
		t.Fatalf("unexpected search defaults: %+v", settings.Search)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected settings file to be created: %v", err)
	}
}

func TestLoadBackfillsZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"server":{"host":"0.0.0.0","port":9000}}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	settings, err := config.NewManager(path).Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if settings.Server.Port != 9000 {
		t.Fatalf("expected configured port to win, got %d", settings.Server.Port)
	}
	if settings.Playback.ContinueWatchingLimit != 20 {
		t.Fatalf("expected limit backfill, got %d", settings.Playback.ContinueWatchingLimit)
	}
	if settings.Search.MinQueryLength != 3 {
		t.Fatalf("expected min query length backfill, got %d", settings.Search.MinQueryLength)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	mgr := config.NewManager(path)

	settings := config.DefaultSettings()
	settings.Catalog.URL = "http://portal:8080"
	settings.Catalog.Username = "user"

	if err := mgr.Save(settings); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	loaded, err := mgr.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if loaded.Catalog.URL != "http://portal:8080" || loaded.Catalog.Username != "user" {
		t.Fatalf("unexpected catalog settings after round trip: %+v", loaded.Catalog)
	}
}
