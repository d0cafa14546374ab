package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/consilium-health/consilium/internal/application/services"
	"github.com/consilium-health/consilium/internal/domain/entities"
	"github.com/consilium-health/consilium/internal/domain/repositories"
	"github.com/consilium-health/consilium/internal/infrastructure/observability"
	apperrors "github.com/consilium-health/consilium/pkg/errors"
)

const maxQueryLength = 4000

// ConsultationService defines the consultation operations used by the handler.
type ConsultationService interface {
	Consult(ctx context.Context, sessionID, query string, patient *entities.PatientContext) (*services.ConsultationResult, error)
}

// ConsultationHandler handles consultation requests.
type ConsultationHandler struct {
	service    ConsultationService
	repository repositories.ConsultationRepository
	metrics    *observability.Metrics
}

// NewConsultationHandler creates a new consultation handler. The repository
// and metrics may be nil.
func NewConsultationHandler(service ConsultationService, repository repositories.ConsultationRepository, metrics *observability.Metrics) *ConsultationHandler {
	return &ConsultationHandler{
		service:    service,
		repository: repository,
		metrics:    metrics,
	}
}

type consultationRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	Age       *int   `json:"age,omitempty"`
}

// CreateConsultation handles POST /api/consultations
func (h *ConsultationHandler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var payload consultationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Query = strings.TrimSpace(payload.Query)
	if payload.Query == "" {
		respondWithError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(payload.Query) > maxQueryLength {
		respondWithError(w, http.StatusBadRequest, "query is too long")
		return
	}
	if payload.Age != nil && (*payload.Age < 0 || *payload.Age > 130) {
		respondWithError(w, http.StatusBadRequest, "age is out of range")
		return
	}

	var patient *entities.PatientContext
	if payload.Age != nil {
		patient = &entities.PatientContext{Age: payload.Age}
	}

	result, err := h.service.Consult(r.Context(), payload.SessionID, payload.Query, patient)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to process consultation")
		return
	}

	if h.metrics != nil && result.Emergency.IsEmergency {
		observability.RecordEmergencyFlag(r.Context(), h.metrics, result.Emergency.Urgency.String())
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetConsultation handles GET /api/consultations/{id}
func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	if h.repository == nil {
		respondWithError(w, http.StatusNotFound, "consultation history is not enabled")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "consultation id is required")
		return
	}

	consultation, err := h.repository.GetByID(r.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "consultation not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to get consultation")
		return
	}

	respondWithJSON(w, http.StatusOK, consultation)
}

// ListSessionConsultations handles GET /api/sessions/{id}/consultations
func (h *ConsultationHandler) ListSessionConsultations(w http.ResponseWriter, r *http.Request) {
	if h.repository == nil {
		respondWithError(w, http.StatusNotFound, "consultation history is not enabled")
		return
	}

	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session id is required")
		return
	}

	consultations, err := h.repository.ListBySession(r.Context(), sessionID, 20)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list consultations")
		return
	}
	if consultations == nil {
		consultations = []*entities.Consultation{}
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"session_id":    sessionID,
		"consultations": consultations,
	})
}
