// Command predict scores a race with the current snapshot and the top-3 model.
// With -serve it keeps running and answers POST /predict next to the health
// and metrics endpoints.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"totoforecast/internal/api"
	"totoforecast/internal/bootstrap"
	"totoforecast/internal/features/ingest"
	"totoforecast/internal/features/pipeline"
	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/services/prediction"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

func main() {
	racePath := flag.String("race", "", "Race JSON in the published API layout")
	version := flag.String("snapshot", "", "Snapshot version (default: current)")
	serve := flag.Bool("serve", false, "Serve /predict, /health and /metrics until interrupted")
	flag.Parse()

	if *racePath == "" && !*serve {
		fmt.Fprintln(os.Stderr, "usage: predict -race race.json | -serve [-snapshot version]")
		os.Exit(2)
	}

	c := bootstrap.NewContainer()
	c.MustInitConfig()
	c.MustInitSnapshots()

	snap, err := loadSnapshot(c.Context, c.Snapshots, *version)
	if err != nil {
		c.Log.Fatalf("Failed to load snapshot: %v", err)
	}

	inference, err := pipeline.NewInference(snap, c.Config.Features.HistoryCap, c.Log)
	if err != nil {
		c.Log.Fatalf("Snapshot %s rejected: %v", snap.Version, err)
	}

	c.MustInitClassifier()
	svc := prediction.NewService(inference, c.Classifier, c.Config.Model.SignalCutoff, c.Log)

	if *racePath != "" {
		if err := predictFile(c.Context, svc, *racePath); err != nil {
			c.Log.Errorw("Prediction failed", "race", *racePath, "error", err)
			c.Shutdown()
			os.Exit(1)
		}
	}

	if *serve {
		checks := map[string]func(context.Context) error{
			"snapshot": func(ctx context.Context) error {
				_, err := c.Snapshots.Load(ctx, snap.Version)
				return err
			},
		}
		if c.Redis != nil {
			checks["redis"] = c.Redis.Health
		}
		c.StartHTTPServer(checks, api.NewPredictHandler(svc, c.Log))
		waitForShutdown(c.Context, c.Log)
	}

	c.Shutdown()
}

func loadSnapshot(ctx context.Context, repo snapshot.Repository, version string) (*snapshot.Snapshot, error) {
	if version == "" {
		return repo.Current(ctx)
	}
	id, err := uuid.Parse(version)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "snapshot version %q", version)
	}
	return repo.Load(ctx, id)
}

func predictFile(ctx context.Context, svc *prediction.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read race %s", path)
	}

	var raw ingest.RawRace
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "decode race %s: %v", path, err)
	}

	preds, err := svc.PredictRace(ctx, raw)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(preds)
}

// waitForShutdown blocks until a shutdown signal or a fatal server error
func waitForShutdown(ctx context.Context, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down...")
	case <-ctx.Done():
		log.Warn("Server stopped, shutting down...")
	}
}
