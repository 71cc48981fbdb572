package api

import (
	"context"
	"encoding/json"
	"net/http"

	"totoforecast/internal/features/ingest"
	"totoforecast/internal/services/prediction"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

const maxRaceBody = 4 << 20

// Predictor scores one published race
type Predictor interface {
	PredictRace(ctx context.Context, raw ingest.RawRace) ([]prediction.Prediction, error)
}

// PredictHandler serves POST /predict with a race in the published API layout
type PredictHandler struct {
	predictor Predictor
	log       *logger.Logger
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(predictor Predictor, log *logger.Logger) *PredictHandler {
	return &PredictHandler{predictor: predictor, log: log.Named("api")}
}

type predictResponse struct {
	RaceID      string                  `json:"race_id"`
	Predictions []prediction.Prediction `json:"predictions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP implements http.Handler
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var raw ingest.RawRace
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRaceBody)).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid race payload: " + err.Error()})
		return
	}

	preds, err := h.predictor.PredictRace(r.Context(), raw)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			h.log.Errorw("Prediction failed", "race_id", raw.RaceID.String(), "error", err)
		}
		writeJSON(w, code, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		RaceID:      ingest.NormalizeRace(raw).ID,
		Predictions: preds,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrNoData), errors.Is(err, errors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
