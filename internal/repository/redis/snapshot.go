package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/metrics"
	"totoforecast/pkg/errors"
)

const backend = "redis"

// Compile-time check
var _ snapshot.Repository = (*SnapshotRepository)(nil)

// SnapshotRepository implements snapshot.Repository using Redis. Every version
// is kept under its own key; a pointer key names the current one and a sorted
// set orders versions by creation time.
type SnapshotRepository struct {
	client *redis.Client
	prefix string
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(client *redis.Client, keyPrefix string) *SnapshotRepository {
	return &SnapshotRepository{
		client: client,
		prefix: keyPrefix,
	}
}

// Save stores s and points the current key at it
func (r *SnapshotRepository) Save(ctx context.Context, s *snapshot.Snapshot) (err error) {
	defer observe("save", time.Now(), &err)

	if err := s.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid snapshot")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal snapshot: version=%s", s.Version)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.versionKey(s.Version), data, 0)
		pipe.Set(ctx, r.currentKey(), s.Version.String(), 0)
		pipe.ZAdd(ctx, r.versionsKey(), redis.Z{
			Score:  float64(s.CreatedAt.Unix()),
			Member: s.Version.String(),
		})
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to save snapshot to redis: version=%s", s.Version)
	}

	return nil
}

// Load retrieves a snapshot by version
func (r *SnapshotRepository) Load(ctx context.Context, version uuid.UUID) (s *snapshot.Snapshot, err error) {
	defer observe("load", time.Now(), &err)
	return r.load(ctx, version)
}

// Current retrieves the most recently saved snapshot
func (r *SnapshotRepository) Current(ctx context.Context) (s *snapshot.Snapshot, err error) {
	defer observe("current", time.Now(), &err)

	raw, err := r.client.Get(ctx, r.currentKey()).Result()
	if err == redis.Nil {
		return nil, errors.Wrap(errors.ErrNotFound, "no current snapshot")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current snapshot pointer from redis")
	}

	version, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvariantViolation, "current snapshot pointer %q: %v", raw, err)
	}

	return r.load(ctx, version)
}

// Versions lists stored versions, newest first
func (r *SnapshotRepository) Versions(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.client.ZRevRange(ctx, r.versionsKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list snapshot versions")
	}

	versions := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		v, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (r *SnapshotRepository) load(ctx context.Context, version uuid.UUID) (*snapshot.Snapshot, error) {
	data, err := r.client.Get(ctx, r.versionKey(version)).Bytes()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "snapshot not found: version=%s", version)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get snapshot from redis: version=%s", version)
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

func (r *SnapshotRepository) versionKey(version uuid.UUID) string {
	return r.prefix + ":" + version.String()
}

func (r *SnapshotRepository) currentKey() string {
	return r.prefix + ":current"
}

func (r *SnapshotRepository) versionsKey() string {
	return r.prefix + ":versions"
}

func observe(operation string, started time.Time, err *error) {
	metrics.RecordSnapshotOperation(backend, operation, time.Since(started), *err)
}
