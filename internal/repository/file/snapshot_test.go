package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/imputation"
	"totoforecast/internal/features/snapshot"
	"totoforecast/pkg/errors"
)

func newSnapshot() *snapshot.Snapshot {
	b := identity.NewBuilder()
	b.ID(identity.Driver, "Juhani Makinen")
	b.ID(identity.Track, "Vermo")
	return snapshot.New(b.Maps(), imputation.DefaultStats(), 8, snapshot.CorpusMeta{
		TotalRaces:    2,
		TotalRunners:  16,
		DataStartDate: "2026-01-15",
		DataEndDate:   "2026-03-01",
	})
}

func TestSnapshotRepositoryRoundTrip(t *testing.T) {
	repo, err := NewSnapshotRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.Current(ctx)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	first := newSnapshot()
	require.NoError(t, repo.Save(ctx, first))
	second := newSnapshot()
	require.NoError(t, repo.Save(ctx, second))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Version, current.Version)
	assert.Equal(t, second.Identity, current.Identity)
	assert.Equal(t, second.Imputation, current.Imputation)
	assert.Equal(t, second.Corpus, current.Corpus)
	assert.True(t, second.CreatedAt.Equal(current.CreatedAt))

	loaded, err := repo.Load(ctx, first.Version)
	require.NoError(t, err)
	assert.Equal(t, first.Version, loaded.Version)

	_, err = repo.Load(ctx, uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSnapshotRepositoryLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewSnapshotRepository(dir)
	require.NoError(t, err)

	s := newSnapshot()
	require.NoError(t, repo.Save(context.Background(), s))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{currentFile, s.Version.String() + ".json"}, names)
}

func TestSnapshotRepositoryRejectsTamperedFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewSnapshotRepository(dir)
	require.NoError(t, err)
	ctx := context.Background()

	s := newSnapshot()
	require.NoError(t, repo.Save(ctx, s))

	// a snapshot written for another feature layout
	path := filepath.Join(dir, s.Version.String()+".json")
	data := []byte(`{"version":"` + s.Version.String() + `","created_at":"` + time.Now().UTC().Format(time.RFC3339) +
		`","history_cap":8,"static_feature_count":30,"history_feature_count":25,"km_time_divisor":1000}`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = repo.Current(ctx)
	assert.True(t, errors.Is(err, errors.ErrSnapshotMismatch))
}

func TestSnapshotRepositoryRejectsInvalidSave(t *testing.T) {
	repo, err := NewSnapshotRepository(t.TempDir())
	require.NoError(t, err)

	s := newSnapshot()
	s.HistoryCap = 0

	err = repo.Save(context.Background(), s)
	assert.True(t, errors.Is(err, errors.ErrSnapshotMismatch))
}

func TestNewSnapshotRepositoryRequiresDir(t *testing.T) {
	_, err := NewSnapshotRepository(" ")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	repo, err := NewSnapshotRepository(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Save(ctx, newSnapshot()), context.Canceled)
}
