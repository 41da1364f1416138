package mylist

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

// Service persists each profile's saved items ("My List"). Membership is
// unique by (profileId, contentId); add and remove are idempotent. A failed
// persistence write is a recoverable warning: the mutation is rolled back
// and the prior state retained.
type Service struct {
	mu    sync.RWMutex
	path  string
	items map[int][]models.SavedItem // newest first
}

// NewService creates a saved-items service storing data inside the provided
// directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create mylist dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "mylist.json"),
		items: make(map[int][]models.SavedItem),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}
	return svc, nil
}

// List returns a profile's saved items, most recently added first.
func (s *Service) List(profileID int) []models.SavedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.items[profileID]
	out := make([]models.SavedItem, len(stored))
	copy(out, stored)
	return out
}

// Contains reports membership for one content item.
func (s *Service) Contains(profileID int, contentID string) bool {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items[profileID] {
		if item.ContentID == contentID {
			return true
		}
	}
	return false
}

// Add inserts an item at the head of the profile's list. Adding an item that
// is already present is a no-op.
func (s *Service) Add(item models.SavedItem) error {
	if item.ProfileID <= 0 {
		return ErrProfileIDRequired
	}
	item.ContentID = strings.TrimSpace(item.ContentID)
	if item.ContentID == "" {
		return ErrContentIDRequired
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items[item.ProfileID]
	for _, existing := range prev {
		if existing.ContentID == item.ContentID {
			return nil
		}
	}

	next := make([]models.SavedItem, 0, len(prev)+1)
	next = append(next, item)
	next = append(next, prev...)
	s.items[item.ProfileID] = next

	if err := s.saveLocked(); err != nil {
		s.items[item.ProfileID] = prev
		log.Printf("[mylist] persist add: %v (change discarded)", err)
	}
	return nil
}

// Remove deletes an item from the profile's list. Removing an absent item is
// a no-op.
func (s *Service) Remove(profileID int, contentID string) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return ErrContentIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items[profileID]
	next := make([]models.SavedItem, 0, len(prev))
	for _, item := range prev {
		if item.ContentID == contentID {
			continue
		}
		next = append(next, item)
	}
	if len(next) == len(prev) {
		return nil
	}

	s.items[profileID] = next
	if err := s.saveLocked(); err != nil {
		s.items[profileID] = prev
		log.Printf("[mylist] persist remove: %v (change discarded)", err)
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
		log.Printf("[mylist] open store: %v (starting empty)", err)
		return nil
	}
	defer file.Close()

	var stored map[string][]models.SavedItem
	dec := json.NewDecoder(file)
	if err := dec.Decode(&stored); err != nil {
		log.Printf("[mylist] decode store: %v (starting empty)", err)
		return nil
	}

	s.items = make(map[int][]models.SavedItem, len(stored))
	for key, items := range stored {
		profileID, err := strconv.Atoi(key)
		if err != nil || profileID <= 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].AddedAt.After(items[j].AddedAt)
		})
		// Drop duplicates defensively; the store never holds two entries
		// for the same content.
		seen := make(map[string]bool, len(items))
		deduped := items[:0]
		for _, item := range items {
			if seen[item.ContentID] {
				continue
			}
			seen[item.ContentID] = true
			deduped = append(deduped, item)
		}
		s.items[profileID] = deduped
	}
	return nil
}

func (s *Service) saveLocked() error {
	stored := make(map[string][]models.SavedItem, len(s.items))
	for profileID, items := range s.items {
		stored[strconv.Itoa(profileID)] = items
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create mylist temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode mylist: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync mylist: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close mylist temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace mylist file: %w", err)
	}
	return nil
}
