package project

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"albumus/internal/config"
	"albumus/internal/faults"
	"albumus/internal/logging"
)

const lockFileName = ".albumus.lock"

// Layout resolves the well-known paths under a project root.
type Layout struct {
	Root   string
	In     string
	Out    string
	Config string
}

// New returns the layout for root after expanding ~ and making it absolute.
func New(root string) (Layout, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return Layout{}, fmt.Errorf("project directory not set")
	}
	abs, err := config.ExpandPath(root)
	if err != nil {
		return Layout{}, err
	}
	return Layout{
		Root:   abs,
		In:     filepath.Join(abs, "in"),
		Out:    filepath.Join(abs, "out"),
		Config: config.ProjectConfigPath(abs),
	}, nil
}

// Validate checks that the root holds an in/ directory and a config file.
func (l Layout) Validate() error {
	info, err := os.Stat(l.In)
	if err != nil {
		return fmt.Errorf("project %s: missing in/ directory: %w", l.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project %s: in is not a directory", l.Root)
	}
	info, err = os.Stat(l.Config)
	if err != nil {
		return fmt.Errorf("project %s: missing config file: %w", l.Root, err)
	}
	if info.IsDir() {
		return fmt.Errorf("project %s: %s is a directory", l.Root, filepath.Base(l.Config))
	}
	return nil
}

// IsValid reports whether dir looks like a project. Used to prune recent
// project lists.
func IsValid(dir string) bool {
	layout, err := New(dir)
	if err != nil {
		return false
	}
	return layout.Validate() == nil
}

// ClearOutput removes the generated out/ tree. A missing tree is reported as a
// notice and is not an error. It returns whether anything was deleted.
func (l Layout) ClearOutput(logger *slog.Logger) (bool, error) {
	logger = logging.NewComponentLogger(logger, "clear")
	info, err := os.Stat(l.Out)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		logger.Info("output directory does not exist", logging.String(logging.FieldPath, l.Out))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect output directory: %w", err)
	}
	if err := os.RemoveAll(l.Out); err != nil {
		return false, fmt.Errorf("delete output directory %s: %w", l.Out, err)
	}
	logger.Info("deleted output directory", logging.String(logging.FieldPath, l.Out))
	return true, nil
}

// Lock takes the project lock without blocking. The caller must call the
// returned release function.
func (l Layout) Lock() (func() error, error) {
	path := filepath.Join(l.Root, lockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrLocked, "project", "lock", l.Root+" is in use by another albumus process", nil)
	}
	return lock.Unlock, nil
}

// Rel returns path relative to the project root when possible.
func (l Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
