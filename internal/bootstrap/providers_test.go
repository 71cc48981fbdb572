package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"totoforecast/internal/adapters/config"
	errnoop "totoforecast/internal/adapters/errors/noop"
	"totoforecast/internal/adapters/errors/sentry"
	"totoforecast/pkg/logger"
)

func TestProvideErrorTracker(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Version: "1.2.3"},
		ErrorTracking: config.ErrorTrackingConfig{
			Environment: "test",
			SentryDSN:   "https://public@sentry.example.com/1",
		},
	}

	tracker := provideErrorTracker(cfg, logger.NewNop())
	assert.IsType(t, &errnoop.Tracker{}, tracker)

	cfg.ErrorTracking.Enabled = true
	tracker = provideErrorTracker(cfg, logger.NewNop())
	assert.IsType(t, &sentry.Tracker{}, tracker)

	cfg.ErrorTracking.SentryDSN = ""
	tracker = provideErrorTracker(cfg, logger.NewNop())
	assert.IsType(t, &errnoop.Tracker{}, tracker)
}
