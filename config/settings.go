package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Database DatabaseSettings `json:"database"`
	Storage  StorageSettings  `json:"storage"`
	Ratings  RatingsSettings  `json:"ratings"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseSettings locates the sqlite file holding the content catalog
// and viewing habits.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// StorageSettings locates the directory holding the JSON document stores
// (users, profiles, catalogs).
type StorageSettings struct {
	Directory string `json:"directory"`
}

// RatingsSettings configures the external ratings lookup. Without an API
// key the lookup endpoint answers 503.
type RatingsSettings struct {
	APIKey        string `json:"apiKey"`
	CacheTTLHours int    `json:"cacheTtlHours"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseSettings{Path: "data/cinehub.db"},
		Storage:  StorageSettings{Directory: "data"},
		Ratings:  RatingsSettings{APIKey: "", CacheTTLHours: 24},
		Log: LogConfig{
			File:       "data/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
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
		return Settings{}, err
	}

	if s.Server.Port <= 0 {
		s.Server.Port = DefaultSettings().Server.Port
	}
	if s.Database.Path == "" {
		s.Database.Path = DefaultSettings().Database.Path
	}
	if s.Storage.Directory == "" {
		s.Storage.Directory = DefaultSettings().Storage.Directory
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
