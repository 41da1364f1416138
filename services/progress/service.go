package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"streamix/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrProfileIDRequired  = errors.New("profile id is required")
	ErrContentIDRequired  = errors.New("content id is required")
)

// DefaultRetention caps the number of records kept per profile.
const DefaultRetention = 20

// Service persists watch-progress records per profile and owns the continue
// watching list. Records are unique by (profileId, contentId); for series
// content the key is the episode id.
type Service struct {
	mu        sync.RWMutex
	path      string
	retention int
	records   map[int][]models.WatchProgressRecord // newest first
}

// NewService constructs a progress store backed by a JSON file on disk.
// retention <= 0 falls back to DefaultRetention.
func NewService(storageDir string, retention int) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if retention <= 0 {
		retention = DefaultRetention
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}

	svc := &Service{
		path:      filepath.Join(storageDir, "progress.json"),
		retention: retention,
		records:   make(map[int][]models.WatchProgressRecord),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Get returns a profile's records, most recently watched first. Absent data
// yields an empty slice, never an error.
func (s *Service) Get(profileID int) []models.WatchProgressRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[profileID]
	out := make([]models.WatchProgressRecord, len(stored))
	copy(out, stored)
	return out
}

// FindByContentID resolves the resume offset source for a single item.
func (s *Service) FindByContentID(profileID int, contentID string) (models.WatchProgressRecord, bool) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return models.WatchProgressRecord{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records[profileID] {
		if rec.ContentID == contentID {
			return rec, true
		}
	}
	return models.WatchProgressRecord{}, false
}

// Upsert replaces any record with the same (profileId, contentId), prepends
// the new one and truncates to the retention cap, evicting the least
// recently watched. The write is persisted synchronously; if persistence
// fails the in-memory change is rolled back.
func (s *Service) Upsert(rec models.WatchProgressRecord) error {
	if rec.ProfileID <= 0 {
		return ErrProfileIDRequired
	}
	rec.ContentID = strings.TrimSpace(rec.ContentID)
	if rec.ContentID == "" {
		return ErrContentIDRequired
	}
	if rec.LastWatchedAt.IsZero() {
		rec.LastWatchedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.records[rec.ProfileID]

	next := make([]models.WatchProgressRecord, 0, len(prev)+1)
	next = append(next, rec)
	for _, existing := range prev {
		if existing.ContentID == rec.ContentID {
			continue
		}
		next = append(next, existing)
	}

	// Retention follows lastWatchedAt, not insertion order.
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].LastWatchedAt.After(next[j].LastWatchedAt)
	})
	if len(next) > s.retention {
		next = next[:s.retention]
	}

	s.records[rec.ProfileID] = next

	if err := s.saveLocked(); err != nil {
		s.records[rec.ProfileID] = prev
		return fmt.Errorf("persist progress: %w", err)
	}
	return nil
}

// Remove drops the record for one content item, if present. Used when a
// profile dismisses a continue-watching row.
func (s *Service) Remove(profileID int, contentID string) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return ErrContentIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.records[profileID]
	next := make([]models.WatchProgressRecord, 0, len(prev))
	for _, rec := range prev {
		if rec.ContentID == contentID {
			continue
		}
		next = append(next, rec)
	}
	if len(next) == len(prev) {
		return nil
	}

	s.records[profileID] = next
	if err := s.saveLocked(); err != nil {
		s.records[profileID] = prev
		return fmt.Errorf("persist progress: %w", err)
	}
	return nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		// A store that cannot be read degrades to empty rather than
		// blocking startup.
		log.Printf("[progress] open store: %v (starting empty)", err)
		return nil
	}
	defer file.Close()

	var stored map[string][]models.WatchProgressRecord
	dec := json.NewDecoder(file)
	if err := dec.Decode(&stored); err != nil {
		log.Printf("[progress] decode store: %v (starting empty)", err)
		return nil
	}

	s.records = make(map[int][]models.WatchProgressRecord, len(stored))
	for key, recs := range stored {
		profileID, err := strconv.Atoi(key)
		if err != nil || profileID <= 0 {
			continue
		}
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].LastWatchedAt.After(recs[j].LastWatchedAt)
		})
		if len(recs) > s.retention {
			recs = recs[:s.retention]
		}
		s.records[profileID] = recs
	}
	return nil
}

func (s *Service) saveLocked() error {
	stored := make(map[string][]models.WatchProgressRecord, len(s.records))
	for profileID, recs := range s.records {
		stored[strconv.Itoa(profileID)] = recs
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create progress temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode progress: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync progress: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close progress temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
