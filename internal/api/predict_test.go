package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totoforecast/internal/api/health"
	"totoforecast/internal/features/ingest"
	"totoforecast/internal/services/prediction"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

type stubPredictor struct {
	preds []prediction.Prediction
	err   error
	got   ingest.RawRace
}

func (s *stubPredictor) PredictRace(_ context.Context, raw ingest.RawRace) ([]prediction.Prediction, error) {
	s.got = raw
	return s.preds, s.err
}

func TestPredictHandler(t *testing.T) {
	stub := &stubPredictor{preds: []prediction.Prediction{
		{Number: 4, Name: "Delta", Probability: 0.7, ImpliedOdds: 1.43, Signal: prediction.SignalBet},
	}}
	h := NewPredictHandler(stub, logger.NewNop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict",
		strings.NewReader(`{"raceId": 99, "runners": [{"startNumber": 4}]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "99", resp.RaceID)
	require.Len(t, resp.Predictions, 1)
	assert.Equal(t, 4, resp.Predictions[0].Number)
	assert.Len(t, stub.got.Runners, 1)
}

func TestPredictHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     string
		err      error
		wantCode int
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", nil, http.StatusBadRequest},
		{"no starters", http.MethodPost, `{"raceId": 1}`, errors.ErrNoData, http.StatusUnprocessableEntity},
		{"model down", http.MethodPost, `{"raceId": 1}`, errors.ErrUnavailable, http.StatusServiceUnavailable},
		{"invariant", http.MethodPost, `{"raceId": 1}`, errors.ErrShapeMismatch, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPredictHandler(&stubPredictor{err: tt.err}, logger.NewNop())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/predict", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestServerRoutes(t *testing.T) {
	srv := NewServer(ServerConfig{ServiceName: "predict", Version: "test"},
		health.New(logger.NewNop(), nil, "predict", "test"), nil, logger.NewNop())

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"service":"predict","version":"test","status":"running"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
