package profiles_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"streamix/models"
	"streamix/services/profiles"
)

func TestServiceInitialisesDefaultProfile(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	list := svc.List()
	if len(list) != 1 {
		t.Fatalf("expected exactly one profile, got %d", len(list))
	}

	if list[0].ID != 1 {
		t.Fatalf("expected default profile id 1, got %d", list[0].ID)
	}
	if list[0].Name != models.DefaultProfileName {
		t.Fatalf("expected default profile name %q, got %q", models.DefaultProfileName, list[0].Name)
	}
}

func TestServiceCreateRenameAndDelete(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create(profiles.CreateInput{Name: "Evening Watcher"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if created.ID != 2 {
		t.Fatalf("expected second profile to get id 2, got %d", created.ID)
	}

	renamed, err := svc.Rename(created.ID, "Night Owl")
	if err != nil {
		t.Fatalf("rename returned error: %v", err)
	}
	if renamed.Name != "Night Owl" {
		t.Fatalf("expected renamed profile to have updated name, got %q", renamed.Name)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if svc.Exists(created.ID) {
		t.Fatalf("expected profile to be deleted")
	}
}

func TestDeleteLastProfileFails(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	list := svc.List()
	if len(list) != 1 {
		t.Fatalf("expected exactly one profile, got %d", len(list))
	}

	if err := svc.Delete(list[0].ID); !errors.Is(err, profiles.ErrLastProfile) {
		t.Fatalf("expected ErrLastProfile, got %v", err)
	}
}

func TestLockedProfileRequiresPin(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	_, err = svc.Create(profiles.CreateInput{Name: "Locked", Locked: true})
	if !errors.Is(err, profiles.ErrPinRequired) {
		t.Fatalf("expected ErrPinRequired, got %v", err)
	}

	_, err = svc.Create(profiles.CreateInput{Name: "Locked", Locked: true, Pin: "12ab"})
	if !errors.Is(err, profiles.ErrPinFormat) {
		t.Fatalf("expected ErrPinFormat for non-digit pin, got %v", err)
	}

	_, err = svc.Create(profiles.CreateInput{Name: "Locked", Locked: true, Pin: "123"})
	if !errors.Is(err, profiles.ErrPinFormat) {
		t.Fatalf("expected ErrPinFormat for short pin, got %v", err)
	}

	created, err := svc.Create(profiles.CreateInput{Name: "Locked", Locked: true, Pin: "4321"})
	if err != nil {
		t.Fatalf("create with valid pin returned error: %v", err)
	}
	if !created.Locked || !created.HasPin() {
		t.Fatalf("expected created profile to be locked with a pin")
	}
}

func TestVerifyPin(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create(profiles.CreateInput{Name: "Locked", Locked: true, Pin: "4321"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	if err := svc.VerifyPin(created.ID, "4321"); err != nil {
		t.Fatalf("expected correct pin to verify, got %v", err)
	}
	if err := svc.VerifyPin(created.ID, "0000"); !errors.Is(err, profiles.ErrPinInvalid) {
		t.Fatalf("expected ErrPinInvalid for wrong pin, got %v", err)
	}
}

func TestVerifyPinWithoutPinSet(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	defaultProfile := svc.List()[0]
	if err := svc.VerifyPin(defaultProfile.ID, "1122"); !errors.Is(err, profiles.ErrPinNotSet) {
		t.Fatalf("expected ErrPinNotSet for profile without pin, got %v", err)
	}
}

func TestClearPinUnlocks(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create(profiles.CreateInput{Name: "Locked", Locked: true, Pin: "9876"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	cleared, err := svc.ClearPin(created.ID)
	if err != nil {
		t.Fatalf("clear pin returned error: %v", err)
	}
	if cleared.Locked || cleared.HasPin() {
		t.Fatalf("expected cleared profile to be unlocked without a pin")
	}
}

func TestProfilesSurviveReload(t *testing.T) {
	dir := t.TempDir()

	svc, err := profiles.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	created, err := svc.Create(profiles.CreateInput{Name: "Kid", IsKid: true})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if _, err := svc.SetPin(created.ID, "2468"); err != nil {
		t.Fatalf("set pin returned error: %v", err)
	}

	reloaded, err := profiles.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reload service: %v", err)
	}

	got, found := reloaded.Get(created.ID)
	if !found {
		t.Fatalf("expected profile to survive reload")
	}
	if !got.IsKid {
		t.Fatalf("expected kid flag to survive reload")
	}
	if !got.Locked || !got.HasPin() {
		t.Fatalf("expected pin and lock to survive reload")
	}
	if err := reloaded.VerifyPin(created.ID, "2468"); err != nil {
		t.Fatalf("expected pin to verify after reload, got %v", err)
	}
}

func TestFailedSaveRollsBackMemory(t *testing.T) {
	dir := t.TempDir()
	svc, err := profiles.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	second, err := svc.Create(profiles.CreateInput{Name: "Second"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	// A directory squatting on the temp file path makes every save fail.
	if err := os.Mkdir(filepath.Join(dir, "profiles.json.tmp"), 0o755); err != nil {
		t.Fatalf("block saves: %v", err)
	}

	if _, err := svc.Rename(1, "Changed"); err == nil {
		t.Fatal("expected rename to fail while saves are blocked")
	}
	got, found := svc.Get(1)
	if !found || got.Name != models.DefaultProfileName {
		t.Fatalf("expected name rolled back to %q, got %q", models.DefaultProfileName, got.Name)
	}

	if _, err := svc.SetKid(1, true); err == nil {
		t.Fatal("expected set kid to fail while saves are blocked")
	}
	if got, _ := svc.Get(1); got.IsKid {
		t.Fatal("expected kid flag rolled back")
	}

	if err := svc.Delete(second.ID); err == nil {
		t.Fatal("expected delete to fail while saves are blocked")
	}
	if !svc.Exists(second.ID) {
		t.Fatal("expected deleted profile restored after failed save")
	}

	if _, err := svc.Create(profiles.CreateInput{Name: "Third"}); err == nil {
		t.Fatal("expected create to fail while saves are blocked")
	}
	if len(svc.List()) != 2 {
		t.Fatalf("expected created profile discarded, got %d profiles", len(svc.List()))
	}

	// Saves work again once the path is clear.
	if err := os.Remove(filepath.Join(dir, "profiles.json.tmp")); err != nil {
		t.Fatalf("unblock saves: %v", err)
	}
	if _, err := svc.Rename(1, "Changed"); err != nil {
		t.Fatalf("rename returned error after unblocking: %v", err)
	}
}
