package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvHome overrides the app directory when set.
const EnvHome = "ALBUMUS_HOME"

// AppPaths locates the files the CLI owns outside any project.
type AppPaths struct {
	Root                 string
	Settings             string
	DefaultProjectConfig string
	LogDir               string
	HistoryDB            string
}

// ResolveAppPaths expands root (or $ALBUMUS_HOME, or ~/.config/albumus) into
// the app file layout.
func ResolveAppPaths(root string) (AppPaths, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(EnvHome))
	}
	if root == "" {
		root = defaultAppRoot
	}
	expanded, err := expandPath(root)
	if err != nil {
		return AppPaths{}, err
	}
	return AppPaths{
		Root:                 expanded,
		Settings:             filepath.Join(expanded, "config", "settings.json"),
		DefaultProjectConfig: filepath.Join(expanded, "config", "default", "project", "config.json"),
		LogDir:               filepath.Join(expanded, "_log"),
		HistoryDB:            filepath.Join(expanded, "history.db"),
	}, nil
}

// LogFile returns the append-only log file for a named task.
func (p AppPaths) LogFile(task string) string {
	return filepath.Join(p.LogDir, task+".log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
