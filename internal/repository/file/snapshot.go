// Package file stores snapshots as JSON documents in a local directory.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/metrics"
	"totoforecast/pkg/errors"
)

const (
	backend     = "file"
	currentFile = "current"
)

// Compile-time check
var _ snapshot.Repository = (*SnapshotRepository)(nil)

// SnapshotRepository writes {dir}/{version}.json plus a "current" pointer file.
// Both are replaced by rename so a reader never sees a partial write.
type SnapshotRepository struct {
	dir string
}

// NewSnapshotRepository creates the directory if needed
func NewSnapshotRepository(dir string) (*SnapshotRepository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "snapshot directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create snapshot directory %s", dir)
	}
	return &SnapshotRepository{dir: dir}, nil
}

// Save writes s and points current at it
func (r *SnapshotRepository) Save(ctx context.Context, s *snapshot.Snapshot) (err error) {
	defer observe("save", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid snapshot")
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal snapshot: version=%s", s.Version)
	}

	if err := r.writeAtomic(r.versionPath(s.Version), data); err != nil {
		return err
	}
	return r.writeAtomic(filepath.Join(r.dir, currentFile), []byte(s.Version.String()))
}

// Load reads a snapshot by version
func (r *SnapshotRepository) Load(ctx context.Context, version uuid.UUID) (s *snapshot.Snapshot, err error) {
	defer observe("load", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.load(version)
}

// Current reads the snapshot the pointer file names
func (r *SnapshotRepository) Current(ctx context.Context) (s *snapshot.Snapshot, err error) {
	defer observe("current", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(r.dir, currentFile))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrNotFound, "no current snapshot in %s", r.dir)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read current snapshot pointer")
	}

	version, err := uuid.Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvariantViolation, "current snapshot pointer %q: %v", raw, err)
	}
	return r.load(version)
}

func (r *SnapshotRepository) load(version uuid.UUID) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(r.versionPath(version))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrNotFound, "snapshot not found: version=%s", version)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read snapshot: version=%s", version)
	}

	var s snapshot.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal snapshot: version=%s", version)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SnapshotRepository) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(r.dir, ".snapshot-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to move snapshot into %s", path)
	}
	return nil
}

func (r *SnapshotRepository) versionPath(version uuid.UUID) string {
	return filepath.Join(r.dir, version.String()+".json")
}

func observe(operation string, started time.Time, err *error) {
	metrics.RecordSnapshotOperation(backend, operation, time.Since(started), *err)
}
