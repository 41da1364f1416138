package session_test

import (
	"errors"
	"testing"

	"streamix/models"
	"streamix/services/session"
)

func TestGetWithoutMarker(t *testing.T) {
	svc, err := session.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if _, err := svc.Get(); !errors.Is(err, session.ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker, got %v", err)
	}
}

func TestSetAndGet(t *testing.T) {
	svc, err := session.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := svc.Set(3, models.AppStateApp); err != nil {
		t.Fatalf("set returned error: %v", err)
	}

	marker, err := svc.Get()
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if marker.ProfileID != 3 || marker.AppState != models.AppStateApp {
		t.Fatalf("unexpected marker: %+v", marker)
	}
	if marker.SavedAt.IsZero() {
		t.Fatalf("expected savedAt to be stamped")
	}
}

func TestSetRejectsUnknownState(t *testing.T) {
	svc, err := session.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := svc.Set(1, "lobby"); err == nil {
		t.Fatalf("expected unknown app state to be rejected")
	}
}

func TestMarkerSurvivesReload(t *testing.T) {
	dir := t.TempDir()

	svc, err := session.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := svc.Set(2, models.AppStateProfiles); err != nil {
		t.Fatalf("set returned error: %v", err)
	}

	reloaded, err := session.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reload service: %v", err)
	}

	marker, err := reloaded.Get()
	if err != nil {
		t.Fatalf("get after reload returned error: %v", err)
	}
	if marker.ProfileID != 2 {
		t.Fatalf("expected marker to survive reload, got %+v", marker)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()

	svc, err := session.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := svc.Set(1, models.AppStateApp); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if err := svc.Clear(); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	if _, err := svc.Get(); !errors.Is(err, session.ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker after clear, got %v", err)
	}

	// Clearing an absent marker is a no-op.
	if err := svc.Clear(); err != nil {
		t.Fatalf("second clear returned error: %v", err)
	}

	reloaded, err := session.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reload service: %v", err)
	}
	if _, err := reloaded.Get(); !errors.Is(err, session.ErrNoMarker) {
		t.Fatalf("expected cleared marker to stay cleared after reload, got %v", err)
	}
}
