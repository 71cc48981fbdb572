package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"totoforecast/internal/features/tensor"
	"totoforecast/internal/metrics"
	"totoforecast/pkg/clickhouse"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

const trainingExamplesTable = "training_examples"

// TrainingExamplesSchema creates the export table. Rows of one snapshot
// version sort together so a training job reads them with a range scan.
const TrainingExamplesSchema = `
	CREATE TABLE IF NOT EXISTS training_examples (
		snapshot_version UUID,
		race_id String,
		number UInt16,
		name String,
		driver String,
		label UInt8,
		static Array(Float32),
		history Array(Array(Float32)),
		created_at DateTime64(3)
	) ENGINE = MergeTree()
	ORDER BY (snapshot_version, race_id, number)
`

// TrainingExample is one labelled runner row
type TrainingExample struct {
	SnapshotVersion uuid.UUID   `ch:"snapshot_version"`
	RaceID          string      `ch:"race_id"`
	Number          uint16      `ch:"number"`
	Name            string      `ch:"name"`
	Driver          string      `ch:"driver"`
	Label           uint8       `ch:"label"`
	Static          []float32   `ch:"static"`
	History         [][]float32 `ch:"history"`
	CreatedAt       time.Time   `ch:"created_at"`
}

// ExamplesFromBatch flattens a labelled batch into export rows
func ExamplesFromBatch(version uuid.UUID, batch *tensor.Batch) ([]TrainingExample, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if batch.Labels == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "batch has no labels")
	}

	now := time.Now().UTC()
	rows := make([]TrainingExample, 0, batch.Len())
	for i := 0; i < batch.Len(); i++ {
		history := make([][]float32, len(batch.History[i]))
		for j, row := range batch.History[i] {
			history[j] = toFloat32(row)
		}

		meta := batch.Meta[i]
		rows = append(rows, TrainingExample{
			SnapshotVersion: version,
			RaceID:          meta.RaceID,
			Number:          uint16(meta.Number),
			Name:            meta.Name,
			Driver:          meta.Driver,
			Label:           uint8(batch.Labels[i]),
			Static:          toFloat32(batch.Static[i]),
			History:         history,
			CreatedAt:       now,
		})
	}
	return rows, nil
}

// TrainingExampleRepository exports training rows through a batch writer
type TrainingExampleRepository struct {
	conn   driver.Conn
	writer *clickhouse.BatchWriter[TrainingExample]
}

// NewTrainingExampleRepository creates a new training example repository
func NewTrainingExampleRepository(conn driver.Conn, maxBatchSize int, maxAge time.Duration, log *logger.Logger) *TrainingExampleRepository {
	repo := &TrainingExampleRepository{conn: conn}

	repo.writer = clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig[TrainingExample]{
		FlushFunc:    repo.insert,
		OnFlush:      func(rows int, _ time.Duration, err error) { metrics.RecordExport(rows, err) },
		TableName:    trainingExamplesTable,
		MaxBatchSize: maxBatchSize,
		MaxAge:       maxAge,
		Log:          log,
	})

	return repo
}

// EnsureSchema creates the table when it does not exist
func (r *TrainingExampleRepository) EnsureSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, TrainingExamplesSchema); err != nil {
		return errors.Wrap(err, "failed to create training_examples table")
	}
	return nil
}

// Start begins the background flush loop
func (r *TrainingExampleRepository) Start(ctx context.Context) {
	r.writer.Start(ctx)
}

// Stop flushes pending rows and shuts the writer down
func (r *TrainingExampleRepository) Stop(ctx context.Context) error {
	return r.writer.Stop(ctx)
}

// StoreBatch buffers every runner of a labelled batch
func (r *TrainingExampleRepository) StoreBatch(ctx context.Context, version uuid.UUID, batch *tensor.Batch) error {
	rows, err := ExamplesFromBatch(version, batch)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.writer.Add(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of exported rows for a snapshot version
func (r *TrainingExampleRepository) Count(ctx context.Context, version uuid.UUID) (uint64, error) {
	var count uint64
	row := r.conn.QueryRow(ctx, "SELECT count() FROM training_examples WHERE snapshot_version = ?", version)
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "failed to count training examples: version=%s", version)
	}
	return count, nil
}

func (r *TrainingExampleRepository) insert(ctx context.Context, rows []TrainingExample) error {
	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO training_examples")
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for i := range rows {
		if err := batch.AppendStruct(&rows[i]); err != nil {
			_ = batch.Abort()
			return errors.Wrapf(err, "failed to append training example: race=%s number=%d",
				rows[i].RaceID, rows[i].Number)
		}
	}

	if err := batch.Send(); err != nil {
		return errors.Wrap(err, "failed to send training examples batch")
	}
	return nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
