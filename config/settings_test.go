package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	m := NewManager(path)

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Server.Port != 8400 {
		t.Errorf("default port = %d, want 8400", s.Server.Port)
	}
	if s.Catalog.Language != "en" {
		t.Errorf("default language = %q, want en", s.Catalog.Language)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file not written: %v", err)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	s := DefaultSettings()
	s.Server.Port = 9000
	s.Catalog.APIKey = "abc123"
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", loaded.Server.Port)
	}
	if loaded.Catalog.APIKey != "abc123" {
		t.Errorf("apiKey = %q, want abc123", loaded.Catalog.APIKey)
	}
}

func TestLoadBackfillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	// A config written before the storage/tasks/log sections existed.
	legacy := `{"server":{"host":"0.0.0.0","port":8400},"catalog":{"apiKey":"k"}}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Catalog.APIKey != "k" {
		t.Errorf("apiKey = %q, want k", s.Catalog.APIKey)
	}
	if s.Catalog.Language != "en" {
		t.Errorf("backfilled language = %q, want en", s.Catalog.Language)
	}
	if s.Database.Path == "" || s.Storage.Directory == "" || s.Log.File == "" {
		t.Errorf("missing sections not backfilled: %+v", s)
	}
	if s.Tasks.QueueSize <= 0 {
		t.Errorf("queue size not backfilled: %d", s.Tasks.QueueSize)
	}
}

func TestLoadWithoutPathFails(t *testing.T) {
	if _, err := NewManager("").Load(); err == nil {
		t.Fatal("expected error for empty config path")
	}
}
