// Package workspace allocates the staging directories used by extraction runs
//
// Each run owns exactly one workspace: it is created before the artifact is fetched and destroyed
// once the store has returned, whatever the outcome of the run.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Manager struct {
	BaseDir string
}

// NewManager returns a manager which creates workspaces under baseDir
// if baseDir is empty the system temp dir is used
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{BaseDir: baseDir}
}

// Create creates a new, empty workspace named with a random identifier
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.BaseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace base dir %s: %w", m.BaseDir, err)
	}

	path := filepath.Join(m.BaseDir, newIdentifier())
	// Mkdir (not MkdirAll) so an existing directory is never reused
	if err := os.Mkdir(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace %s: %w", path, err)
	}
	slog.Debug("Created workspace", "path", path)
	return path, nil
}

// Destroy removes the workspace and everything in it
// errors are logged, never returned
func (m *Manager) Destroy(path string) {
	if path == "" {
		return
	}
	if !m.contains(path) {
		slog.Warn("Refusing to destroy a path outside the workspace base dir", "path", path, "base_dir", m.BaseDir)
		return
	}
	if err := os.RemoveAll(path); err != nil {
		slog.Warn("Failed to destroy workspace", "path", path, "error", err)
		return
	}
	slog.Debug("Destroyed workspace", "path", path)
}

func (m *Manager) contains(path string) bool {
	rel, err := filepath.Rel(m.BaseDir, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

func newIdentifier() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
