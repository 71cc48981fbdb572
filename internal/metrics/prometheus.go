package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"totoforecast/pkg/errors"
)

// Build modes
const (
	ModeTraining  = "training"
	ModeInference = "inference"
)

var (
	// Feature pipeline metrics
	RacesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toto_feature_races_built_total",
			Help: "Total number of races turned into feature tensors",
		},
		[]string{"mode", "status"}, // status: success|no_data|invariant|error
	)

	RunnersBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toto_feature_runners_built_total",
			Help: "Total number of runner rows built",
		},
		[]string{"mode"},
	)

	RaceBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toto_feature_race_build_duration_seconds",
			Help:    "Time to build the tensors of one race",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"mode"},
	)

	InvariantViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toto_feature_invariant_violations_total",
			Help: "Structural violations detected by the feature pipeline",
		},
		[]string{"kind"}, // kind: shape|namespace|snapshot|other
	)

	// Prediction metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toto_predictions_total",
			Help: "Total number of runner predictions by signal",
		},
		[]string{"signal"}, // signal: BET|SKIP
	)

	PredictionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toto_prediction_requests_total",
			Help: "Total number of race prediction requests",
		},
		[]string{"status"}, // status: success|no_data|error
	)

	PredictionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "toto_prediction_latency_seconds",
			Help:    "End-to-end race prediction latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Artifact storage metrics
	SnapshotOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toto_snapshot_operations_total",
			Help: "Snapshot repository operations",
		},
		[]string{"backend", "operation", "status"},
	)

	SnapshotOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toto_snapshot_operation_duration_seconds",
			Help:    "Snapshot repository operation duration",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"backend", "operation"},
	)

	ExportedExamples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toto_exported_examples_total",
			Help: "Training examples written to the analytics store",
		},
		[]string{"status"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Feature pipeline metrics
	prometheus.MustRegister(RacesBuilt)
	prometheus.MustRegister(RunnersBuilt)
	prometheus.MustRegister(RaceBuildDuration)
	prometheus.MustRegister(InvariantViolations)

	// Prediction metrics
	prometheus.MustRegister(Predictions)
	prometheus.MustRegister(PredictionRequests)
	prometheus.MustRegister(PredictionLatency)

	// Artifact storage metrics
	prometheus.MustRegister(SnapshotOperations)
	prometheus.MustRegister(SnapshotOperationDuration)
	prometheus.MustRegister(ExportedExamples)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// BuildStatus classifies a race build outcome
func BuildStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errors.ErrNoData):
		return "no_data"
	case errors.Is(err, errors.ErrInvariantViolation):
		return "invariant"
	}
	return "error"
}

// InvariantKind classifies an invariant violation
func InvariantKind(err error) string {
	switch {
	case errors.Is(err, errors.ErrShapeMismatch):
		return "shape"
	case errors.Is(err, errors.ErrNamespaceMissing):
		return "namespace"
	case errors.Is(err, errors.ErrSnapshotMismatch):
		return "snapshot"
	}
	return "other"
}

// RecordRaceBuild records one race passing through the feature pipeline
func RecordRaceBuild(mode string, runners int, duration time.Duration, err error) {
	status := BuildStatus(err)

	RacesBuilt.WithLabelValues(mode, status).Inc()
	RaceBuildDuration.WithLabelValues(mode).Observe(duration.Seconds())

	if err == nil {
		RunnersBuilt.WithLabelValues(mode).Add(float64(runners))
		return
	}
	if status == "invariant" {
		InvariantViolations.WithLabelValues(InvariantKind(err)).Inc()
	}
}

// RecordPrediction records one race prediction request
func RecordPrediction(latency time.Duration, signals []string, err error) {
	status := BuildStatus(err)
	if status == "invariant" {
		status = "error"
	}

	PredictionRequests.WithLabelValues(status).Inc()
	PredictionLatency.Observe(latency.Seconds())

	for _, s := range signals {
		Predictions.WithLabelValues(s).Inc()
	}
}

// RecordSnapshotOperation records a snapshot repository call
func RecordSnapshotOperation(backend, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	SnapshotOperations.WithLabelValues(backend, operation, status).Inc()
	SnapshotOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordExport records training examples handed to the analytics store
func RecordExport(rows int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExportedExamples.WithLabelValues(status).Add(float64(rows))
}
