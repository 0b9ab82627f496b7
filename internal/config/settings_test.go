package config_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"albumus/internal/config"
	"albumus/internal/faults"
)

func TestEnsureSettingsCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "settings.json")
	s, err := config.EnsureSettings(path)
	if err != nil {
		t.Fatalf("EnsureSettings: %v", err)
	}
	if s.DirRecentMax != 10 {
		t.Fatalf("dir_recent_max = %d", s.DirRecentMax)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}
}

func TestSaveSettingsKeepsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `{"dir":"/a","dir_recent":["/a"],"dir_recent_max":3,"theme":"dark"}`)
	s, err := config.LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if err := config.SaveSettings(path, s.UseProject("/b")); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["theme"] != "dark" {
		t.Fatalf("unknown key lost: %v", doc)
	}
	if doc["dir"] != "/b" {
		t.Fatalf("dir = %v", doc["dir"])
	}
}

func TestLoadSettingsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `{"dir":`)
	if _, err := config.LoadSettings(path); !errors.Is(err, faults.ErrConfigParse) {
		t.Fatalf("expected ErrConfigParse, got %v", err)
	}
}

func TestUseProjectMovesToFrontAndTruncates(t *testing.T) {
	s := config.Settings{DirRecent: []string{"/a", "/b", "/c"}, DirRecentMax: 3}
	got := s.UseProject("/c")
	if want := []string{"/c", "/a", "/b"}; !reflect.DeepEqual(got.DirRecent, want) {
		t.Fatalf("recent = %v, want %v", got.DirRecent, want)
	}
	got = got.UseProject("/d")
	if want := []string{"/d", "/c", "/a"}; !reflect.DeepEqual(got.DirRecent, want) {
		t.Fatalf("recent = %v, want %v", got.DirRecent, want)
	}
	if got.Dir != "/d" {
		t.Fatalf("dir = %q", got.Dir)
	}
	if !reflect.DeepEqual(s.DirRecent, []string{"/a", "/b", "/c"}) {
		t.Fatalf("original mutated: %v", s.DirRecent)
	}
}

func TestPruneRecent(t *testing.T) {
	s := config.Settings{Dir: "/gone", DirRecent: []string{"/keep", "/gone"}, DirRecentMax: 10}
	got := s.PruneRecent(func(dir string) bool { return dir == "/keep" })
	if !reflect.DeepEqual(got.DirRecent, []string{"/keep"}) {
		t.Fatalf("recent = %v", got.DirRecent)
	}
	if got.Dir != "" {
		t.Fatalf("expected invalid dir cleared, got %q", got.Dir)
	}
}
