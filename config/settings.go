package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Catalog  CatalogSettings  `json:"catalog"`
	Database DatabaseSettings `json:"database"`
	Storage  StorageSettings  `json:"storage"`
	Tasks    TaskSettings     `json:"tasks"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CatalogSettings configures the external movie metadata service.
type CatalogSettings struct {
	APIKey   string `json:"apiKey"`
	Language string `json:"language"`
	BaseURL  string `json:"baseUrl,omitempty"` // override for tests and proxies
}

// DatabaseSettings defines the document store location.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// StorageSettings defines where uploaded profile photos live and the public
// URL they are served under.
type StorageSettings struct {
	Directory string `json:"directory"`
	BaseURL   string `json:"baseUrl"`
}

// TaskSettings bounds the background task runner.
type TaskSettings struct {
	QueueSize int `json:"queueSize"`
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
		Server:   ServerSettings{Host: "0.0.0.0", Port: 8400},
		Catalog:  CatalogSettings{APIKey: "", Language: "en"},
		Database: DatabaseSettings{Path: "data/filmhub.db"},
		Storage:  StorageSettings{Directory: "data/uploads", BaseURL: "/uploads"},
		Tasks:    TaskSettings{QueueSize: 256},
		Log: LogConfig{
			File:       "data/logs/filmhub.log",
			Level:      "info",
			MaxSize:    50, // 50 MB per file
			MaxBackups: 3,  // keep 3 old files
			MaxAge:     7,  // 7 days
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

// EnsureDir ensures parent directory exists.
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

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	// Backfill defaults for configs that predate newer sections.
	defaults := DefaultSettings()
	if strings.TrimSpace(s.Catalog.Language) == "" {
		s.Catalog.Language = defaults.Catalog.Language
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		s.Database.Path = defaults.Database.Path
	}
	if strings.TrimSpace(s.Storage.Directory) == "" {
		s.Storage = defaults.Storage
	}
	if s.Tasks.QueueSize <= 0 {
		s.Tasks.QueueSize = defaults.Tasks.QueueSize
	}
	if strings.TrimSpace(s.Log.File) == "" {
		s.Log = defaults.Log
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
