package bootstrap

import (
	"context"
	"sync"
	"time"

	chclient "totoforecast/internal/adapters/clickhouse"
	redisclient "totoforecast/internal/adapters/redis"
	"totoforecast/internal/api"
	"totoforecast/internal/ml/top3"
	chrepo "totoforecast/internal/repository/clickhouse"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 30 * time.Second,
	}
}

// Shutdown performs coordinated cleanup in order:
// 1. No new requests accepted
// 2. Pending training examples flushed
// 3. Model session released
// 4. Logs and errors flushed
// 5. Store connections last
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	examples *chrepo.TrainingExampleRepository,
	classifier *top3.Classifier,
	chClient *chclient.Client,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/6] Stopping HTTP server...")
	if httpServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		if err := httpServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}
	l.waitForGoroutines(wg, 5*time.Second, log)

	log.Info("[2/6] Flushing training examples...")
	if examples != nil {
		if err := examples.Stop(shutdownCtx); err != nil {
			log.Errorw("Training example flush failed", "error", err)
		} else {
			log.Info("✓ Training examples flushed")
		}
	}

	log.Info("[3/6] Releasing model...")
	if classifier != nil {
		classifier.Close()
	}

	log.Info("[4/6] Flushing error tracker...")
	l.flushErrorTracker(shutdownCtx, errorTracker, log)

	log.Info("[5/6] Syncing logs...")
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	}

	log.Info("[6/6] Closing store connections...")
	l.closeStores(chClient, redisClient, log)

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for background goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn("Timeout waiting for background goroutines")
	}
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	}
}

// closeStores closes the store connections that were opened
func (l *Lifecycle) closeStores(chClient *chclient.Client, redisClient *redisclient.Client, log *logger.Logger) {
	var closeErrors []error

	if chClient != nil {
		if err := chClient.Close(); err != nil {
			closeErrors = append(closeErrors, errors.Wrap(err, "clickhouse"))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			closeErrors = append(closeErrors, errors.Wrap(err, "redis"))
		}
	}

	if len(closeErrors) > 0 {
		log.Errorw("Store close errors", "errors", closeErrors)
	} else {
		log.Info("✓ Store connections closed")
	}
}
