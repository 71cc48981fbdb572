package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/snapshot"
	"totoforecast/pkg/logger"
)

// SnapshotCollector exposes the state of the current snapshot
type SnapshotCollector struct {
	log  *logger.Logger
	repo snapshot.Repository

	// Descriptors
	identities   *prometheus.Desc
	corpusRaces  *prometheus.Desc
	corpusRunner *prometheus.Desc
	createdAt    *prometheus.Desc
}

// NewSnapshotCollector creates a new snapshot collector
func NewSnapshotCollector(log *logger.Logger, repo snapshot.Repository) *SnapshotCollector {
	return &SnapshotCollector{
		log:  log,
		repo: repo,

		identities: prometheus.NewDesc(
			"toto_snapshot_identities",
			"Known identities per namespace in the current snapshot",
			[]string{"namespace"}, nil,
		),
		corpusRaces: prometheus.NewDesc(
			"toto_snapshot_corpus_races",
			"Races in the corpus behind the current snapshot",
			[]string{"version"}, nil,
		),
		corpusRunner: prometheus.NewDesc(
			"toto_snapshot_corpus_runners",
			"Runner rows in the corpus behind the current snapshot",
			[]string{"version"}, nil,
		),
		createdAt: prometheus.NewDesc(
			"toto_snapshot_created_timestamp",
			"Unix timestamp of the current snapshot",
			[]string{"version"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *SnapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.identities
	ch <- c.corpusRaces
	ch <- c.corpusRunner
	ch <- c.createdAt
}

// Collect implements prometheus.Collector
func (c *SnapshotCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := c.repo.Current(ctx)
	if err != nil {
		c.log.Warnw("Failed to collect snapshot metrics", "error", err)
		return
	}

	for _, ns := range identity.Namespaces {
		ch <- prometheus.MustNewConstMetric(
			c.identities,
			prometheus.GaugeValue,
			float64(snap.Identity.Len(ns)),
			string(ns),
		)
	}

	version := snap.Version.String()
	ch <- prometheus.MustNewConstMetric(c.corpusRaces, prometheus.GaugeValue, float64(snap.Corpus.TotalRaces), version)
	ch <- prometheus.MustNewConstMetric(c.corpusRunner, prometheus.GaugeValue, float64(snap.Corpus.TotalRunners), version)
	ch <- prometheus.MustNewConstMetric(c.createdAt, prometheus.GaugeValue, float64(snap.CreatedAt.Unix()), version)
}

// RegisterSnapshotCollector registers the snapshot collector
func RegisterSnapshotCollector(collector *SnapshotCollector) {
	prometheus.MustRegister(collector)
}
