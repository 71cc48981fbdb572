package bootstrap

import (
	"context"

	chclient "totoforecast/internal/adapters/clickhouse"
	"totoforecast/internal/adapters/config"
	errnoop "totoforecast/internal/adapters/errors/noop"
	"totoforecast/internal/adapters/errors/sentry"
	redisclient "totoforecast/internal/adapters/redis"
	"totoforecast/internal/api"
	"totoforecast/internal/api/health"
	"totoforecast/internal/metrics"
	"totoforecast/internal/ml/top3"
	chrepo "totoforecast/internal/repository/clickhouse"
	filerepo "totoforecast/internal/repository/file"
	redisrepo "totoforecast/internal/repository/redis"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration, initializes the logger, the error
// tracker and the metric registry
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Artifacts
// ========================================

// MustInitSnapshots opens the configured snapshot backend
func (c *Container) MustInitSnapshots() {
	switch c.Config.Artifacts.Backend {
	case "redis":
		c.Log.Info("Connecting to Redis...")
		client, err := redisclient.NewClient(c.Context, c.Config.Redis)
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Redis = client
		c.Snapshots = redisrepo.NewSnapshotRepository(client.Client(), c.Config.Artifacts.KeyPrefix)
		c.Log.Info("✓ Redis snapshot store ready")
	default:
		repo, err := filerepo.NewSnapshotRepository(c.Config.Artifacts.Dir)
		if err != nil {
			c.Log.Fatalf("failed to open snapshot directory: %v", err)
		}
		c.Snapshots = repo
		c.Log.Infow("✓ File snapshot store ready", "dir", c.Config.Artifacts.Dir)
	}

	metrics.RegisterSnapshotCollector(metrics.NewSnapshotCollector(c.Log, c.Snapshots))
}

// MustInitExporter connects ClickHouse and prepares the training example table
func (c *Container) MustInitExporter() {
	cfg := c.Config.ClickHouse

	c.Log.Info("Connecting to ClickHouse...")
	client, err := chclient.NewClient(c.Context, cfg)
	if err != nil {
		c.Log.Fatalf("failed to connect clickhouse: %v", err)
	}
	c.CH = client

	c.Examples = chrepo.NewTrainingExampleRepository(client.Conn(), cfg.MaxBatchSize, cfg.MaxBatchAge, c.Log)
	if err := c.Examples.EnsureSchema(c.Context); err != nil {
		c.Log.Fatalf("failed to prepare training_examples: %v", err)
	}
	c.Examples.Start(c.Context)
	c.Log.Info("✓ ClickHouse exporter started")
}

// ========================================
// Phase 3: Model
// ========================================

// MustInitClassifier loads the ONNX top-3 model
func (c *Container) MustInitClassifier() {
	classifier, err := top3.NewClassifier(c.Config.Model.Path, c.Config.Model.RuntimeLibrary)
	if err != nil {
		c.Log.Fatalf("failed to load model %s: %v", c.Config.Model.Path, err)
	}
	c.Classifier = classifier
	c.Log.Infow("✓ Model loaded", "path", c.Config.Model.Path)
}

// ========================================
// Helper Provider Functions
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideHTTPServer(
	cfg *config.Config,
	healthChecks map[string]func(context.Context) error,
	predictions *api.PredictHandler,
	log *logger.Logger,
) *api.Server {
	checks := make(map[string]health.Check, len(healthChecks))
	for name, check := range healthChecks {
		checks[name] = check
	}

	return api.NewServer(
		api.ServerConfig{
			Addr:        cfg.Metrics.Addr,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
		},
		health.New(log, checks, cfg.App.Name, cfg.App.Version),
		predictions,
		log,
	)
}
