package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/imputation"
	"totoforecast/pkg/errors"
)

func newSnapshot() *Snapshot {
	b := identity.NewBuilder()
	b.ID(identity.Driver, "Juhani Makinen")
	return New(b.Maps(), imputation.DefaultStats(), 8, CorpusMeta{TotalRaces: 1, TotalRunners: 12})
}

func TestNewSnapshotIsValid(t *testing.T) {
	s := newSnapshot()

	assert.NotEqual(t, uuid.Nil, s.Version)
	assert.False(t, s.CreatedAt.IsZero())
	require.NoError(t, s.Validate())
	require.NoError(t, s.RequireHistoryCap(8))
}

func TestSnapshotJSONRoundTripStaysValid(t *testing.T) {
	s := newSnapshot()

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var loaded Snapshot
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.NoError(t, loaded.Validate())
	assert.Equal(t, s.Version, loaded.Version)
	assert.Equal(t, s.Identity, loaded.Identity)
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
		target error
	}{
		{"no version", func(s *Snapshot) { s.Version = uuid.Nil }, errors.ErrInvariantViolation},
		{"zero cap", func(s *Snapshot) { s.HistoryCap = 0 }, errors.ErrSnapshotMismatch},
		{"layout", func(s *Snapshot) { s.StaticFeatureCount = 26 }, errors.ErrSnapshotMismatch},
		{"divisor", func(s *Snapshot) { s.KmTimeDivisor = 500 }, errors.ErrSnapshotMismatch},
		{"namespace", func(s *Snapshot) { s.Identity.Tracks = nil }, errors.ErrNamespaceMissing},
		{"imputation", func(s *Snapshot) { s.Imputation.ColdBlood.Record = 0 }, errors.ErrInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSnapshot()
			tt.mutate(s)

			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			assert.True(t, errors.Is(err, errors.ErrInvariantViolation))
		})
	}
}

func TestRequireHistoryCap(t *testing.T) {
	err := newSnapshot().RequireHistoryCap(10)
	assert.True(t, errors.Is(err, errors.ErrSnapshotMismatch))
}
