// Package storage persists the engine's shared state: the single JSON
// registry document holding ID counters and metadata snapshots for every
// work item and group.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/lane/internal/fsops"
	"github.com/valter-silva-au/lane/pkg/models"
)

// EngineDir is the directory under the work tree root that marks a lane
// project and holds the registry, lock, and event log.
const EngineDir = ".lane"

const (
	registryFilename = "registry.json"
	lockFilename     = "registry.lock"
)

// RegistryCorruptionError reports a registry document that failed to
// parse. The engine fails closed on this rather than guessing; BackupPath
// names the last-known-good copy when one exists.
type RegistryCorruptionError struct {
	Path       string
	BackupPath string
	Err        error
}

func (e *RegistryCorruptionError) Error() string {
	msg := fmt.Sprintf("registry %s is corrupt: %v", e.Path, e.Err)
	if e.BackupPath != "" {
		msg += fmt.Sprintf(" (last-known-good backup: %s)", e.BackupPath)
	}
	return msg
}

func (e *RegistryCorruptionError) Unwrap() error { return e.Err }

// RegistryManager defines the interface for loading and atomically saving
// the registry document. The whole document is read into memory, mutated,
// and written back in one operation; readers never observe a partial write.
type RegistryManager interface {
	Load() error
	Save() error
	Registry() *models.Registry

	// Acquire takes the advisory lock guarding the read-modify-write
	// window. The returned release function must be called once the
	// window closes. When locking is disabled, Acquire is a no-op.
	Acquire() (release func() error, err error)
}

type fileRegistryManager struct {
	basePath     string
	advisoryLock bool
	data         *models.Registry
}

// NewRegistryManager creates a RegistryManager backed by
// {basePath}/.lane/registry.json. advisoryLock enables flock serialization
// of concurrent engine invocations.
func NewRegistryManager(basePath string, advisoryLock bool) RegistryManager {
	return &fileRegistryManager{
		basePath:     basePath,
		advisoryLock: advisoryLock,
		data:         models.NewRegistry(),
	}
}

func (m *fileRegistryManager) registryPath() string {
	return filepath.Join(m.basePath, EngineDir, registryFilename)
}

func (m *fileRegistryManager) backupPath() string {
	return m.registryPath() + ".bak"
}

func (m *fileRegistryManager) Registry() *models.Registry { return m.data }

// Load reads the registry document, replacing the in-memory copy. A
// missing file yields an empty registry with counters at 1.
func (m *fileRegistryManager) Load() error {
	path := m.registryPath()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		m.data = models.NewRegistry()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading registry: %w", err)
	}

	reg := models.NewRegistry()
	if err := json.Unmarshal(raw, reg); err != nil {
		corrupt := &RegistryCorruptionError{Path: path, Err: err}
		if _, statErr := os.Stat(m.backupPath()); statErr == nil {
			corrupt.BackupPath = m.backupPath()
		}
		return corrupt
	}
	if reg.WorkItems == nil {
		reg.WorkItems = make(map[string]*models.WorkItem)
	}
	if reg.Groups == nil {
		reg.Groups = make(map[string]*models.Group)
	}
	m.data = reg
	return nil
}

// Save writes the in-memory registry back in a single atomic operation.
// The previous document is preserved as registry.json.bak so a later
// corruption has a last-known-good copy to point at.
func (m *fileRegistryManager) Save() error {
	content, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	content = append(content, '\n')

	tx := fsops.Begin()
	if prev, err := os.ReadFile(m.registryPath()); err == nil {
		tx.Rewrite(m.backupPath(), prev)
	}
	tx.Rewrite(m.registryPath(), content)
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	return nil
}

// Acquire takes the flock guarding the registry read-modify-write window.
func (m *fileRegistryManager) Acquire() (func() error, error) {
	if !m.advisoryLock {
		return func() error { return nil }, nil
	}
	lockPath := filepath.Join(m.basePath, EngineDir, lockFilename)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating engine directory: %w", err)
	}
	return fsops.Lock(lockPath)
}
