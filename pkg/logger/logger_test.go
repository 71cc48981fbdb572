package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"totoforecast/pkg/errors"
)

type recordingTracker struct {
	errs []error
	tags []map[string]string
}

func (r *recordingTracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
	return nil
}

func (r *recordingTracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	return nil
}

func (r *recordingTracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
}

func (r *recordingTracker) Flush(ctx context.Context) error { return nil }

func TestNamedLoggerTagsTrackedErrors(t *testing.T) {
	tracker := &recordingTracker{}
	log := &Logger{SugaredLogger: zap.NewNop().Sugar(), errorTracker: tracker}

	log.Named("pipeline").Errorf("race %s broken", "R1")
	log.Named("pipeline").ErrorWithContext(context.Background(), errors.ErrShapeMismatch, map[string]string{"race_id": "R1"})

	assert.Len(t, tracker.errs, 2)
	assert.Equal(t, "pipeline", tracker.tags[0]["component"])
	assert.Equal(t, "R1", tracker.tags[1]["race_id"])
	assert.Equal(t, "pipeline", tracker.tags[1]["component"])
	assert.True(t, errors.Is(tracker.errs[1], errors.ErrInvariantViolation))
}

func TestNopLoggerDoesNotTrack(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.Errorf("nothing %d", 1)
		log.With("k", "v").Debug("quiet")
	})
}
