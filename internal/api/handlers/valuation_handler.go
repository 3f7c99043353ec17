package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/agrivalor/equipment-valuation/internal/application/services"
	"github.com/agrivalor/equipment-valuation/internal/domain/entities"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/observability"
	apperrors "github.com/agrivalor/equipment-valuation/pkg/errors"
	"github.com/agrivalor/equipment-valuation/pkg/extract"
)

// ValuationHandler handles valuation HTTP requests
type ValuationHandler struct {
	pipeline *services.ValuationPipeline
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(pipeline *services.ValuationPipeline) *ValuationHandler {
	return &ValuationHandler{
		pipeline: pipeline,
	}
}

type valuationRequest struct {
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
}

// CreateValuation handles POST /api/valuations
func (h *ValuationHandler) CreateValuation(w http.ResponseWriter, r *http.Request) {
	var payload valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	query, err := buildQuery(payload)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.pipeline.Run(r.Context(), query)
	if err != nil {
		h.respondWithPipelineError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}

// buildQuery validates the request and resolves the typed query, pulling
// hours out of the free-text description when stated there.
func buildQuery(payload valuationRequest) (*entities.ValuationQuery, error) {
	payload.Make = strings.TrimSpace(payload.Make)
	payload.Model = strings.TrimSpace(payload.Model)
	payload.Description = strings.TrimSpace(payload.Description)

	if payload.Make == "" {
		return nil, errors.New("make is required")
	}
	if payload.Model == "" {
		return nil, errors.New("model is required")
	}
	if payload.Year != 0 && (payload.Year < 1900 || payload.Year > 2100) {
		return nil, errors.New("year is out of range")
	}

	condition := entities.ConditionGood
	if payload.Condition != "" {
		parsed, err := entities.ParseCondition(payload.Condition)
		if err != nil {
			return nil, err
		}
		condition = parsed
	}

	query := &entities.ValuationQuery{
		Make:        payload.Make,
		Model:       payload.Model,
		Year:        payload.Year,
		Condition:   condition,
		Description: payload.Description,
	}
	if hours, ok := extract.Hours(payload.Description); ok {
		query.Hours = &hours
	}
	return query, nil
}

func (h *ValuationHandler) respondWithPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error().Err(err).Msg("valuation failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeRetrieval:
		if appErr.Err != nil {
			// Search backend failure, not an empty result
			logger.Error().Err(appErr.Err).Msg("comparable sales search failed")
			respondWithError(w, http.StatusBadGateway, appErr.Message)
			return
		}
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeInsufficientData:
		respondWithError(w, http.StatusUnprocessableEntity, appErr.Message)
	default:
		logger.Error().Err(err).Msg("valuation failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
