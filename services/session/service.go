package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"streamix/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrNoMarker           = errors.New("no resume marker stored")
)

// Service stores the resume-on-restart marker: which profile was active and
// whether the app had moved past profile selection. The marker is written on
// every change so an unclean shutdown still restores the last session.
type Service struct {
	mu     sync.RWMutex
	path   string
	marker *models.ResumeMarker
}

func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	svc := &Service{path: filepath.Join(storageDir, "session.json")}
	svc.load()
	return svc, nil
}

// Get returns the stored marker, or ErrNoMarker when none exists. A marker
// for a profile that no longer exists is the caller's problem to detect;
// this layer only reports what was saved.
func (s *Service) Get() (models.ResumeMarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.marker == nil {
		return models.ResumeMarker{}, ErrNoMarker
	}
	return *s.marker, nil
}

// Set records the active profile and app phase.
func (s *Service) Set(profileID int, appState string) error {
	if appState != models.AppStateProfiles && appState != models.AppStateApp {
		return fmt.Errorf("unknown app state %q", appState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.marker
	s.marker = &models.ResumeMarker{
		ProfileID: profileID,
		AppState:  appState,
		SavedAt:   time.Now().UTC(),
	}

	if err := s.saveLocked(); err != nil {
		s.marker = prev
		return fmt.Errorf("persist session marker: %w", err)
	}
	return nil
}

// Clear removes the marker, returning startup to profile selection.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.marker == nil {
		return nil
	}

	prev := s.marker
	s.marker = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.marker = prev
		return fmt.Errorf("remove session marker: %w", err)
	}
	return nil
}

func (s *Service) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		log.Printf("[session] read marker: %v (ignoring)", err)
		return
	}

	var marker models.ResumeMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		log.Printf("[session] decode marker: %v (ignoring)", err)
		return
	}
	s.marker = &marker
}

func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create session temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.marker); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode session marker: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync session marker: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close session temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session marker: %w", err)
	}
	return nil
}
