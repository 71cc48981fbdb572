// Command snapshot builds the identity maps and imputation statistics from a
// training corpus and stores them as a new snapshot version.
package main

import (
	"flag"
	"fmt"
	"os"

	"totoforecast/internal/bootstrap"
	"totoforecast/internal/features/pipeline"
	"totoforecast/internal/services/corpus"
)

func main() {
	corpusPath := flag.String("corpus", "", "Training corpus JSON ({\"races\": [...]})")
	export := flag.Bool("export", false, "Export training examples to ClickHouse (overrides CLICKHOUSE_EXPORT_ENABLED)")
	extend := flag.Bool("extend", false, "Keep the identity IDs of the current snapshot and append new names")
	tensorsPath := flag.String("tensors", "", "Write the training tensors as JSON to this file")
	maxRunners := flag.Int("max-runners", 0, "Pad every race to this many runners in -tensors output (0 writes one flat dataset)")
	flag.Parse()

	if *corpusPath == "" {
		fmt.Fprintln(os.Stderr, "usage: snapshot -corpus ravit.json [-extend] [-export] [-tensors out.json [-max-runners 16]]")
		os.Exit(2)
	}

	c := bootstrap.NewContainer()
	c.MustInitConfig()
	c.MustInitSnapshots()

	var exporter corpus.Exporter
	if *export || c.Config.ClickHouse.Enabled {
		c.MustInitExporter()
		exporter = c.Examples
	}

	trainer, err := pipeline.NewTrainer(c.Config.Features.HistoryCap, c.Log)
	if err != nil {
		c.Log.Fatalf("Failed to create trainer: %v", err)
	}

	svc := corpus.NewService(trainer, c.Snapshots, exporter, c.Log)
	build := svc.BuildFile
	if *extend {
		build = svc.ExtendFile
	}

	result, err := build(c.Context, *corpusPath)
	if err == nil && *tensorsPath != "" {
		err = writeTensors(*tensorsPath, result, *maxRunners)
	}
	if err != nil {
		c.Log.Errorw("Snapshot build failed", "corpus", *corpusPath, "error", err)
		c.Shutdown()
		os.Exit(1)
	}

	c.Shutdown()
	fmt.Println(result.Snapshot.Version)
}

func writeTensors(path string, result *corpus.Result, maxRunners int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := corpus.WriteTensors(f, result, maxRunners); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
