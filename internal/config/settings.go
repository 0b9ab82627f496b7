package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"albumus/internal/faults"
	"albumus/internal/fileutil"
)

// Settings is the global CLI state kept between runs.
type Settings struct {
	Dir          string   `json:"dir"`
	DirRecent    []string `json:"dir_recent"`
	DirRecentMax int      `json:"dir_recent_max"`
	LogLevel     string   `json:"log_level,omitempty"`
	LogFormat    string   `json:"log_format,omitempty"`

	// Extra holds keys this version does not know about so they survive a save.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownSettingsKeys = []string{"dir", "dir_recent", "dir_recent_max", "log_level", "log_format"}

// LoadSettings reads the settings file. Missing files yield defaults.
func LoadSettings(path string) (Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return Settings{}, faults.Wrap(faults.ErrConfigParse, "settings", "read", path, err)
	}
	return parseSettings(path, content)
}

func parseSettings(name string, content []byte) (Settings, error) {
	s := DefaultSettings()
	if len(bytes.TrimSpace(content)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(content, &s); err != nil {
		return Settings{}, faults.Wrap(faults.ErrConfigParse, "settings", "parse", name, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return Settings{}, faults.Wrap(faults.ErrConfigParse, "settings", "parse", name, err)
	}
	for _, key := range knownSettingsKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		s.Extra = raw
	}
	if s.DirRecentMax <= 0 {
		s.DirRecentMax = defaultDirRecentMax
	}
	return s, nil
}

// SaveSettings writes settings atomically, keeping unknown keys.
func SaveSettings(path string, s Settings) error {
	payload, err := s.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := fileutil.WriteAtomic(path, payload, 0o644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// EnsureSettings creates the settings file from defaults when absent and
// returns the stored value.
func EnsureSettings(path string) (Settings, error) {
	if _, err := os.Stat(path); err == nil {
		return LoadSettings(path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, faults.Wrap(faults.ErrConfigParse, "settings", "stat", path, err)
	}
	s := DefaultSettings()
	if err := SaveSettings(path, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// MarshalIndent renders the settings with unknown keys merged back in.
func (s Settings) MarshalIndent() ([]byte, error) {
	doc := make(map[string]any, len(s.Extra)+len(knownSettingsKeys))
	for k, v := range s.Extra {
		doc[k] = v
	}
	recent := s.DirRecent
	if recent == nil {
		recent = []string{}
	}
	doc["dir"] = s.Dir
	doc["dir_recent"] = recent
	doc["dir_recent_max"] = s.DirRecentMax
	if s.LogLevel != "" {
		doc["log_level"] = s.LogLevel
	}
	if s.LogFormat != "" {
		doc["log_format"] = s.LogFormat
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return append(payload, '\n'), nil
}

// UseProject returns a copy with dir selected and moved to the front of the
// recent list, truncated to DirRecentMax.
func (s Settings) UseProject(dir string) Settings {
	dir = strings.TrimSpace(dir)
	out := s
	out.Dir = dir
	limit := s.DirRecentMax
	if limit <= 0 {
		limit = defaultDirRecentMax
	}
	recent := make([]string, 0, len(s.DirRecent)+1)
	if dir != "" {
		recent = append(recent, dir)
	}
	for _, existing := range s.DirRecent {
		if existing == dir || strings.TrimSpace(existing) == "" {
			continue
		}
		recent = append(recent, existing)
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	out.DirRecent = recent
	return out
}

// PruneRecent returns a copy without recent entries rejected by valid. The
// selected dir is cleared when it no longer validates.
func (s Settings) PruneRecent(valid func(string) bool) Settings {
	out := s
	kept := make([]string, 0, len(s.DirRecent))
	for _, dir := range s.DirRecent {
		if valid(dir) {
			kept = append(kept, dir)
		}
	}
	out.DirRecent = kept
	if out.Dir != "" && !valid(out.Dir) {
		out.Dir = ""
	}
	return out
}
