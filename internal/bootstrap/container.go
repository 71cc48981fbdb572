package bootstrap

import (
	"context"
	"sync"

	chclient "totoforecast/internal/adapters/clickhouse"
	"totoforecast/internal/adapters/config"
	redisclient "totoforecast/internal/adapters/redis"
	"totoforecast/internal/api"
	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/ml/top3"
	chrepo "totoforecast/internal/repository/clickhouse"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

// Container holds the dependencies shared by the binaries.
// Components are organized in initialization order; optional ones stay nil.
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure, connected on demand
	CH    *chclient.Client
	Redis *redisclient.Client

	// Artifacts
	Snapshots snapshot.Repository
	Examples  *chrepo.TrainingExampleRepository

	// Model
	Classifier *top3.Classifier

	// Application
	HTTPServer *api.Server

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Lifecycle: NewLifecycle(),
		WG:        &sync.WaitGroup{},
		Context:   ctx,
		Cancel:    cancel,
	}
}

// StartHTTPServer serves probes, metrics and, when predictions is set, the
// predict endpoint in the background. A fatal server error cancels the
// container context.
func (c *Container) StartHTTPServer(healthChecks map[string]func(context.Context) error, predictions *api.PredictHandler) {
	c.HTTPServer = provideHTTPServer(c.Config, healthChecks, predictions, c.Log)

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel()
		}
	}()
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.HTTPServer,
		c.Examples,
		c.Classifier,
		c.CH,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}
