package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kpicli/internal/config"
)

// Manager provides file management operations
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance.
// paths may be nil; relative paths then resolve against the working directory.
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// EnsureDir creates a directory with all parents
func (m *Manager) EnsureDir(path string) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Ensuring directory exists", slog.String("path", fullPath))

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never see a half-written file.
func (m *Manager) WriteFileAtomic(path string, data []byte) error {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("failed to write %s: %w", fullPath, err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to sync %s: %w", fullPath, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", fullPath, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", fullPath, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", fullPath, err)
	}

	slog.Debug("File written",
		slog.String("path", fullPath),
		slog.Int("size_bytes", len(data)))

	return nil
}

// resolvePath resolves a relative path against the base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.paths == nil || m.paths.BaseDir == "" {
		return path
	}
	return filepath.Join(m.paths.BaseDir, path)
}
