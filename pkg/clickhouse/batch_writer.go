// Package clickhouse buffers rows in memory and hands them to an insert
// function in batches. Single-row inserts are slow in ClickHouse.
package clickhouse

import (
	"context"
	"sync"
	"time"

	"totoforecast/pkg/logger"
)

// Defaults applied when the config leaves a limit unset
const (
	DefaultMaxBatchSize = 500
	DefaultMaxAge       = 5 * time.Second
)

// FlushFunc inserts one batch of rows
type FlushFunc[T any] func(ctx context.Context, rows []T) error

// FlushHook observes every flush attempt
type FlushHook func(rows int, duration time.Duration, err error)

// BatchWriterConfig contains configuration for BatchWriter
type BatchWriterConfig[T any] struct {
	FlushFunc    FlushFunc[T]
	OnFlush      FlushHook
	TableName    string
	MaxBatchSize int
	MaxAge       time.Duration
	Log          *logger.Logger
}

// BatchWriter collects rows and flushes them when the buffer is full, on a
// timer while started, and on Stop
type BatchWriter[T any] struct {
	flush   FlushFunc[T]
	onFlush FlushHook
	log     *logger.Logger

	maxBatchSize int
	maxAge       time.Duration
	table        string

	mu        sync.Mutex
	buffer    []T
	lastFlush time.Time
	running   bool
	finalErr  error
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter[T any](cfg BatchWriterConfig[T]) *BatchWriter[T] {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	log := cfg.Log
	if log == nil {
		log = logger.Get()
	}

	return &BatchWriter[T]{
		flush:        cfg.FlushFunc,
		onFlush:      cfg.OnFlush,
		log:          log.With("component", "batch_writer", "table", cfg.TableName),
		maxBatchSize: cfg.MaxBatchSize,
		maxAge:       cfg.MaxAge,
		table:        cfg.TableName,
		buffer:       make([]T, 0, cfg.MaxBatchSize),
		lastFlush:    time.Now(),
		stopCh:       make(chan struct{}),
	}
}

// Start runs the periodic flush until ctx ends or Stop is called
func (w *BatchWriter[T]) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(ctx)

	w.log.Debugw("Batch writer started", "max_batch_size", w.maxBatchSize, "max_age", w.maxAge)
}

// Add buffers one row, flushing synchronously when the buffer fills up
func (w *BatchWriter[T]) Add(ctx context.Context, row T) error {
	w.mu.Lock()
	w.buffer = append(w.buffer, row)
	full := len(w.buffer) >= w.maxBatchSize
	w.mu.Unlock()

	if full {
		return w.Flush(ctx)
	}
	return nil
}

// Flush writes all buffered rows
func (w *BatchWriter[T]) Flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.buffer) == 0 {
		w.mu.Unlock()
		return nil
	}
	rows := w.buffer
	w.buffer = make([]T, 0, w.maxBatchSize)
	w.lastFlush = time.Now()
	w.mu.Unlock()

	// insert outside the lock so Add never waits on the network
	start := time.Now()
	err := w.flush(ctx, rows)
	took := time.Since(start)

	if w.onFlush != nil {
		w.onFlush(len(rows), took, err)
	}
	if err != nil {
		w.log.Errorw("Batch flush failed", "rows", len(rows), "duration", took, "error", err)
		return err
	}

	w.log.Debugw("Batch flushed", "rows", len(rows), "duration", took)
	return nil
}

func (w *BatchWriter[T]) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.maxAge)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.finalFlush()
			return
		case <-w.stopCh:
			w.finalFlush()
			return
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				w.log.Warnw("Periodic flush failed", "error", err)
			}
		}
	}
}

func (w *BatchWriter[T]) finalFlush() {
	err := w.Flush(context.Background())
	if err != nil {
		w.log.Warnw("Final flush failed", "error", err)
	}

	w.mu.Lock()
	w.finalErr = err
	w.mu.Unlock()
}

// Stop ends the periodic flush, writes what is left and waits for completion.
// A writer that was never started is flushed directly. The error of the last
// flush is returned; rows of a failed final batch are not retried.
func (w *BatchWriter[T]) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.Flush(ctx)
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.finalErr
	case <-ctx.Done():
		w.log.Warn("Batch writer stop timed out")
		return ctx.Err()
	}
}

// Stats is a point-in-time view of the writer
type Stats struct {
	Buffered     int
	LastFlushAge time.Duration
	Running      bool
}

// Stats returns the current buffer state
func (w *BatchWriter[T]) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Stats{
		Buffered:     len(w.buffer),
		LastFlushAge: time.Since(w.lastFlush),
		Running:      w.running,
	}
}
