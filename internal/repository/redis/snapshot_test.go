package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/imputation"
	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/testsupport"
	"totoforecast/pkg/errors"
)

func newSnapshot() *snapshot.Snapshot {
	b := identity.NewBuilder()
	b.ID(identity.Coach, "Coach A")
	return snapshot.New(b.Maps(), imputation.DefaultStats(), 8, snapshot.CorpusMeta{TotalRaces: 3})
}

func TestSnapshotRepository(t *testing.T) {
	client, prefix := testsupport.NewRedisClient(t, testsupport.RedisConfigFromEnv(t))
	repo := NewSnapshotRepository(client, prefix)
	ctx := context.Background()

	_, err := repo.Current(ctx)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	first := newSnapshot()
	require.NoError(t, repo.Save(ctx, first))

	second := newSnapshot()
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Save(ctx, second))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Version, current.Version)

	loaded, err := repo.Load(ctx, first.Version)
	require.NoError(t, err)
	assert.Equal(t, first.Identity, loaded.Identity)
	assert.Equal(t, first.Corpus, loaded.Corpus)

	versions, err := repo.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.Version, first.Version}, versions)

	_, err = repo.Load(ctx, uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSnapshotRepositoryRejectsInvalid(t *testing.T) {
	client, prefix := testsupport.NewRedisClient(t, testsupport.RedisConfigFromEnv(t))
	repo := NewSnapshotRepository(client, prefix)

	s := newSnapshot()
	s.Identity.Tracks = nil

	err := repo.Save(context.Background(), s)
	assert.True(t, errors.Is(err, errors.ErrNamespaceMissing))
}
