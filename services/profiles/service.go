package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"streamix/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrNameRequired       = errors.New("name is required")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrPinRequired        = errors.New("a 4-digit PIN is required for a locked profile")
	ErrPinFormat          = errors.New("PIN must be exactly 4 digits")
	ErrPinInvalid         = errors.New("invalid PIN")
	ErrPinNotSet          = errors.New("profile has no PIN set")
	ErrLastProfile        = errors.New("cannot delete the last profile")
)

// CreateInput captures everything needed to register a profile. A locked
// profile must carry an explicit PIN; there is no shared fallback secret.
type CreateInput struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	IsKid  bool   `json:"isKid"`
	Locked bool   `json:"locked"`
	Pin    string `json:"pin,omitempty"`
}

// Service manages persistence of Streamix viewing profiles.
type Service struct {
	mu       sync.RWMutex
	path     string
	profiles map[int]models.Profile
}

// NewService creates a profiles service storing data inside the provided
// directory. An empty store is seeded with a single default profile.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profiles dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "profiles.json"),
		profiles: make(map[int]models.Profile),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	if err := svc.ensureDefaultProfile(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns all profiles ordered by ID.
func (s *Service) List() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the profile with the given ID if present.
func (s *Service) Get(id int) (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	return p, ok
}

// Exists reports whether a profile with the provided ID is registered.
func (s *Service) Exists(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.profiles[id]
	return ok
}

// Create registers a new profile. IDs are assigned max+1 and stay stable for
// the life of the profile.
func (s *Service) Create(input CreateInput) (models.Profile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Profile{}, ErrNameRequired
	}

	pin := strings.TrimSpace(input.Pin)
	if input.Locked && pin == "" {
		return models.Profile{}, ErrPinRequired
	}
	if pin != "" {
		if err := validatePin(pin); err != nil {
			return models.Profile{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createLocked(name, input.Avatar, input.IsKid, input.Locked, pin)
}

// Rename updates the profile's name.
func (s *Service) Rename(id int, name string) (models.Profile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.Profile{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}

	prev := p
	p.Name = trimmed
	p.UpdatedAt = time.Now().UTC()
	s.profiles[id] = p

	if err := s.saveLocked(); err != nil {
		s.profiles[id] = prev
		return models.Profile{}, err
	}
	return p, nil
}

// SetAvatar updates the profile's avatar reference.
func (s *Service) SetAvatar(id int, avatar string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}

	prev := p
	p.Avatar = strings.TrimSpace(avatar)
	p.UpdatedAt = time.Now().UTC()
	s.profiles[id] = p

	if err := s.saveLocked(); err != nil {
		s.profiles[id] = prev
		return models.Profile{}, err
	}
	return p, nil
}

// SetKid sets whether this is a kids profile.
func (s *Service) SetKid(id int, isKid bool) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}

	prev := p
	p.IsKid = isKid
	p.UpdatedAt = time.Now().UTC()
	s.profiles[id] = p

	if err := s.saveLocked(); err != nil {
		s.profiles[id] = prev
		return models.Profile{}, err
	}
	return p, nil
}

// SetPin sets or updates the profile's PIN and marks the profile locked.
func (s *Service) SetPin(id int, pin string) (models.Profile, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return models.Profile{}, ErrPinRequired
	}
	if err := validatePin(pin); err != nil {
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return models.Profile{}, fmt.Errorf("hash PIN: %w", err)
	}

	prev := p
	p.PinHash = string(hash)
	p.Locked = true
	p.UpdatedAt = time.Now().UTC()
	s.profiles[id] = p

	if err := s.saveLocked(); err != nil {
		s.profiles[id] = prev
		return models.Profile{}, err
	}
	return p, nil
}

// ClearPin removes the profile's PIN and unlocks it.
func (s *Service) ClearPin(id int) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}

	prev := p
	p.PinHash = ""
	p.Locked = false
	p.UpdatedAt = time.Now().UTC()
	s.profiles[id] = p

	if err := s.saveLocked(); err != nil {
		s.profiles[id] = prev
		return models.Profile{}, err
	}
	return p, nil
}

// VerifyPin checks the provided PIN against the profile's stored hash.
// A profile without a PIN cannot be verified: that is ErrPinNotSet, not a
// free pass.
func (s *Service) VerifyPin(id int, pin string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	if p.PinHash == "" {
		return ErrPinNotSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PinHash), []byte(pin)); err != nil {
		return ErrPinInvalid
	}
	return nil
}

// Delete removes a profile by ID. The last remaining profile cannot be
// deleted.
func (s *Service) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	if len(s.profiles) <= 1 {
		return ErrLastProfile
	}

	delete(s.profiles, id)
	if err := s.saveLocked(); err != nil {
		s.profiles[id] = prev
		return err
	}
	return nil
}

func (s *Service) ensureDefaultProfile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.profiles) > 0 {
		return nil
	}

	_, err := s.createLocked(models.DefaultProfileName, "", false, false, "")
	return err
}

func (s *Service) createLocked(name, avatar string, isKid, locked bool, pin string) (models.Profile, error) {
	id := 1
	for existing := range s.profiles {
		if existing >= id {
			id = existing + 1
		}
	}

	now := time.Now().UTC()
	p := models.Profile{
		ID:        id,
		Name:      name,
		Avatar:    strings.TrimSpace(avatar),
		IsKid:     isKid,
		Locked:    locked,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return models.Profile{}, fmt.Errorf("hash PIN: %w", err)
		}
		p.PinHash = string(hash)
	}

	s.profiles[p.ID] = p

	if err := s.saveLocked(); err != nil {
		delete(s.profiles, p.ID)
		return models.Profile{}, err
	}
	return p, nil
}

func validatePin(pin string) error {
	if len(pin) != 4 {
		return ErrPinFormat
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return ErrPinFormat
		}
	}
	return nil
}

// storedProfile is the on-disk representation; the hash has to survive the
// round trip even though Profile hides it from API responses. Fields are
// spelled out because embedding Profile would promote its MarshalJSON.
type storedProfile struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	IsKid     bool      `json:"isKid"`
	Locked    bool      `json:"locked"`
	PinHash   string    `json:"pinHash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	var stored []storedProfile
	dec := json.NewDecoder(file)
	if err := dec.Decode(&stored); err != nil {
		return fmt.Errorf("decode profiles: %w", err)
	}

	s.profiles = make(map[int]models.Profile, len(stored))
	for _, sp := range stored {
		if sp.ID <= 0 {
			continue
		}
		p := models.Profile{
			ID:        sp.ID,
			Name:      sp.Name,
			Avatar:    sp.Avatar,
			IsKid:     sp.IsKid,
			Locked:    sp.Locked,
			PinHash:   sp.PinHash,
			CreatedAt: sp.CreatedAt,
			UpdatedAt: sp.UpdatedAt,
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		s.profiles[p.ID] = p
	}
	return nil
}

func (s *Service) saveLocked() error {
	stored := make([]storedProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		stored = append(stored, storedProfile{
			ID:        p.ID,
			Name:      p.Name,
			Avatar:    p.Avatar,
			IsKid:     p.IsKid,
			Locked:    p.Locked,
			PinHash:   p.PinHash,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create profiles temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode profiles: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync profiles: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close profiles temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}
	return nil
}
