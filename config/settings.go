package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Catalog  CatalogSettings  `json:"catalog"`
	Storage  StorageSettings  `json:"storage"`
	Playback PlaybackSettings `json:"playback"`
	PinLock  PinLockSettings  `json:"pinLock"`
	Search   SearchSettings   `json:"search"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CatalogSettings points at the upstream Xtream-style portal.
type CatalogSettings struct {
	URL        string `json:"url"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	TimeoutSec int    `json:"timeoutSec"`
	Retries    int    `json:"retries"`
}

type StorageSettings struct {
	Directory string `json:"directory"`
}

type PlaybackSettings struct {
	// MinProgressSeconds is the absolute media position a session must pass
	// before progress snapshots become durable.
	MinProgressSeconds float64 `json:"minProgressSeconds"`
	// ContinueWatchingLimit caps stored progress records per profile,
	// evicting the least recently watched.
	ContinueWatchingLimit int `json:"continueWatchingLimit"`
}

type PinLockSettings struct {
	SuccessDelayMs int `json:"successDelayMs"`
	RetryDelayMs   int `json:"retryDelayMs"`
}

type SearchSettings struct {
	MinQueryLength  int `json:"minQueryLength"`
	DebounceMs      int `json:"debounceMs"`
	CategoryFanout  int `json:"categoryFanout"`  // categories sampled per search pipeline
	ConcurrentFetch int `json:"concurrentFetch"` // parallel per-category fetches while browsing
}

// LogConfig represents log file rotation configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first start.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8484,
		},
		Catalog: CatalogSettings{
			TimeoutSec: 15,
			Retries:    3,
		},
		Storage: StorageSettings{
			Directory: "cache",
		},
		Playback: PlaybackSettings{
			MinProgressSeconds:    5,
			ContinueWatchingLimit: 20,
		},
		PinLock: PinLockSettings{
			SuccessDelayMs: 300,
			RetryDelayMs:   1000,
		},
		Search: SearchSettings{
			MinQueryLength:  3,
			DebounceMs:      500,
			CategoryFanout:  3,
			ConcurrentFetch: 4,
		},
		Log: LogConfig{
			File:       filepath.Join("cache", "streamix.log"),
			Level:      "info",
			MaxSize:    20,
			MaxAge:     14,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// Manager owns the settings file lifecycle.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Load reads settings from disk, creating the file with defaults when it does
// not exist yet. Missing sections are backfilled with defaults so older
// config files keep working.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s := DefaultSettings()
	dec := json.NewDecoder(f)
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	if s.Playback.ContinueWatchingLimit <= 0 {
		s.Playback.ContinueWatchingLimit = 20
	}
	if s.Playback.MinProgressSeconds <= 0 {
		s.Playback.MinProgressSeconds = 5
	}
	if s.Search.MinQueryLength <= 0 {
		s.Search.MinQueryLength = 3
	}
	if s.Search.ConcurrentFetch <= 0 {
		s.Search.ConcurrentFetch = 4
	}

	return s, nil
}

// Save writes the settings atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create settings temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync settings: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close settings temp file: %w", err)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}
