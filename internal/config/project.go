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

	"github.com/pelletier/go-toml/v2"

	"albumus/internal/faults"
	"albumus/internal/media"
)

// Project is the effective configuration for one compile run.
type Project struct {
	Formats  []media.Format `json:"formats"`
	FFmpeg   FFmpeg         `json:"ffmpeg"`
	Output   Output         `json:"output"`
	Logging  Logging        `json:"logging"`
	Pipeline Pipeline       `json:"pipeline"`
}

// FFmpeg configures the external encoder and prober.
type FFmpeg struct {
	Binary          string          `json:"binary"`
	ProbeBinary     string          `json:"ffprobe_binary"`
	TimeoutSeconds  int             `json:"timeout_seconds"`
	BitrateStrategy BitrateStrategy `json:"bitrate_strategy"`
}

// BitrateStrategy holds the per-format encoder quality rules.
type BitrateStrategy struct {
	MP3 MP3Strategy `json:"mp3"`
	OGG OGGStrategy `json:"ogg"`
}

type MP3Strategy struct {
	FallbackQScale int `json:"fallback_qscale"`
}

// OGGStrategy maps a source bitrate onto a Vorbis quality level:
// clamp((source - BaseBitrate) / Step, MinQuality, MaxQuality).
type OGGStrategy struct {
	MinQuality     int   `json:"min_quality"`
	MaxQuality     int   `json:"max_quality"`
	BaseBitrate    int64 `json:"base_bitrate"`
	Step           int64 `json:"step"`
	FallbackQScale int   `json:"fallback_qscale"`
}

// Output configures album art variants.
type Output struct {
	ArtSizes          map[string]Size `json:"art_sizes"`
	ImageOutputFormat string          `json:"image_output_format"`
	ImageQuality      int             `json:"image_quality"`
}

type Logging struct {
	LogRelativePaths bool `json:"log_relative_paths"`
}

type Pipeline struct {
	Workers int `json:"workers"`
}

// Size is a target width and height, written as a two element array.
type Size struct {
	Width  int
	Height int
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("art size: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("art size: want [width, height], got %d values", len(pair))
	}
	s.Width, s.Height = pair[0], pair[1]
	return nil
}

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Width, s.Height})
}

// ResolveProject reads the default and override files and merges them. An
// absent file counts as an empty mapping; malformed content is fatal.
func ResolveProject(defaultPath, overridePath string) (*Project, error) {
	base, err := readLayer(defaultPath)
	if err != nil {
		return nil, err
	}
	override, err := readLayer(overridePath)
	if err != nil {
		return nil, err
	}
	return decodeProject(mergeShallow(base, override))
}

// LoadProject resolves the effective configuration for a project directory.
// The default layer comes from the app directory when present, otherwise from
// the embedded shipped default. The project layer is config.json, or
// config.toml when no JSON file exists.
func LoadProject(paths AppPaths, projectDir string) (*Project, error) {
	var base map[string]json.RawMessage
	var err error
	if fileExists(paths.DefaultProjectConfig) {
		base, err = readLayer(paths.DefaultProjectConfig)
	} else {
		base, err = parseJSONLayer("embedded default", defaultProjectJSON)
	}
	if err != nil {
		return nil, err
	}
	override, err := readLayer(ProjectConfigPath(projectDir))
	if err != nil {
		return nil, err
	}
	return decodeProject(mergeShallow(base, override))
}

// ProjectConfigPath returns the override file a project directory uses.
func ProjectConfigPath(projectDir string) string {
	jsonPath := filepath.Join(projectDir, "config.json")
	if fileExists(jsonPath) {
		return jsonPath
	}
	tomlPath := filepath.Join(projectDir, "config.toml")
	if fileExists(tomlPath) {
		return tomlPath
	}
	return jsonPath
}

// ParseOverride validates raw override content the way ResolveProject would,
// returning the merged result against the embedded default.
func ParseOverride(name string, content []byte) (*Project, error) {
	base, err := parseJSONLayer("embedded default", defaultProjectJSON)
	if err != nil {
		return nil, err
	}
	override, err := parseJSONLayer(name, content)
	if err != nil {
		return nil, err
	}
	return decodeProject(mergeShallow(base, override))
}

func readLayer(path string) (map[string]json.RawMessage, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]json.RawMessage{}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, faults.Wrap(faults.ErrConfigParse, "config", "read", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOMLLayer(path, content)
	}
	return parseJSONLayer(path, content)
}

func parseJSONLayer(name string, content []byte) (map[string]json.RawMessage, error) {
	layer := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(content)) == 0 {
		return layer, nil
	}
	if err := json.Unmarshal(content, &layer); err != nil {
		return nil, faults.Wrap(faults.ErrConfigParse, "config", "parse", name, err)
	}
	if layer == nil {
		layer = map[string]json.RawMessage{}
	}
	return layer, nil
}

func parseTOMLLayer(name string, content []byte) (map[string]json.RawMessage, error) {
	layer := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(content)) == 0 {
		return layer, nil
	}
	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, faults.Wrap(faults.ErrConfigParse, "config", "parse", name, err)
	}
	for key, value := range doc {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, faults.Wrap(faults.ErrConfigParse, "config", "convert", name+": "+key, err)
		}
		layer[key] = raw
	}
	return layer, nil
}

// mergeShallow overlays override onto base per top-level key.
func mergeShallow(base, override map[string]json.RawMessage) map[string]json.RawMessage {
	merged := make(map[string]json.RawMessage, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

func decodeProject(layer map[string]json.RawMessage) (*Project, error) {
	cfg := defaultProject()
	payload, err := json.Marshal(layer)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfigParse, "config", "merge", "", err)
	}
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, faults.Wrap(faults.ErrConfigParse, "config", "decode", "", err)
	}
	for i, f := range cfg.Formats {
		cfg.Formats[i] = media.Format(strings.ToLower(strings.TrimSpace(string(f))))
	}
	cfg.Output.ImageOutputFormat = strings.ToUpper(strings.TrimSpace(cfg.Output.ImageOutputFormat))
	if cfg.Output.ImageOutputFormat == "JPG" {
		cfg.Output.ImageOutputFormat = "JPEG"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
