// Package storage keeps saved plans on disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
)

// formatVersion is written into every plans file.
const formatVersion = 1

var (
	// ErrEmptyPath is returned when a FileStore has no path to work with.
	ErrEmptyPath = errors.New("storage: path is empty")
	// ErrUnsupportedVersion is returned for files written by a newer build.
	ErrUnsupportedVersion = errors.New("storage: unsupported file version")
)

type plansFile struct {
	Version int                 `yaml:"version"`
	Plans   []model.WeekendPlan `yaml:"plans"`
}

// FileStore persists saved plans as a single YAML document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore writing to path. Nothing touches the
// disk until the first load or save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (f *FileStore) Path() string { return f.path }

// LoadPlans reads the saved plans. A missing file is an empty collection.
func (f *FileStore) LoadPlans(ctx context.Context) ([]model.WeekendPlan, error) {
	if f.path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Info("storage: no saved plans yet", "path", f.path)
			return []model.WeekendPlan{}, nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	var doc plansFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", f.path, err)
	}
	if doc.Version > formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.Plans == nil {
		doc.Plans = []model.WeekendPlan{}
	}
	return doc.Plans, nil
}

// SavePlans replaces the file contents with plans.
func (f *FileStore) SavePlans(ctx context.Context, plans []model.WeekendPlan) error {
	if f.path == "" {
		return ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if plans == nil {
		plans = []model.WeekendPlan{}
	}

	data, err := yaml.Marshal(plansFile{Version: formatVersion, Plans: plans})
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := WriteFileAtomic(f.path, data, ".weekendplan-plans-*.tmp"); err != nil {
		return fmt.Errorf("storage: write %s: %w", f.path, err)
	}
	appLog.Debug("storage: wrote saved plans", "path", f.path, "count", len(plans), "bytes", len(data))
	return nil
}

// WriteFileAtomic writes data next to path under a temporary name matching
// pattern, syncs it, sets 0600 and renames it over path. The parent
// directory is created with 0700 when missing.
func WriteFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	// No-op once the rename succeeded.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
