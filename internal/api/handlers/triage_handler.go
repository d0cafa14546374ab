package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/consilium-health/consilium/internal/application/services"
	"github.com/consilium-health/consilium/internal/domain/entities"
	"github.com/consilium-health/consilium/internal/infrastructure/observability"
)

// TriageHandler exposes the emergency assessment on its own, without running
// a full consultation.
type TriageHandler struct {
	detector *services.EmergencyDetectionService
	metrics  *observability.Metrics
}

// NewTriageHandler creates a new triage handler.
func NewTriageHandler(detector *services.EmergencyDetectionService, metrics *observability.Metrics) *TriageHandler {
	return &TriageHandler{detector: detector, metrics: metrics}
}

type triageRequest struct {
	Text string `json:"text"`
	Age  *int   `json:"age,omitempty"`
}

// AssessEmergency handles POST /api/triage
func (h *TriageHandler) AssessEmergency(w http.ResponseWriter, r *http.Request) {
	var payload triageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Text = strings.TrimSpace(payload.Text)
	if len(payload.Text) > maxQueryLength {
		respondWithError(w, http.StatusBadRequest, "text is too long")
		return
	}

	var patient *entities.PatientContext
	if payload.Age != nil {
		patient = &entities.PatientContext{Age: payload.Age}
	}

	assessment := h.detector.Detect(payload.Text, patient)

	if h.metrics != nil && assessment.IsEmergency {
		observability.RecordEmergencyFlag(r.Context(), h.metrics, assessment.Urgency.String())
	}

	respondWithJSON(w, http.StatusOK, assessment)
}
