package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consilium-health/consilium/internal/application/services"
	"github.com/consilium-health/consilium/internal/domain/entities"
)

func TestTriageHandler_AssessEmergency_Critical(t *testing.T) {
	handler := NewTriageHandler(services.NewEmergencyDetectionService(), nil)

	body := `{"text": "mi padre tuvo un paro cardiaco y no respira"}`
	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.AssessEmergency(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var assessment entities.EmergencyAssessment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&assessment))
	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, entities.UrgencyCritical, assessment.Urgency)
	assert.NotEmpty(t, assessment.Signals)
}

func TestTriageHandler_AssessEmergency_Routine(t *testing.T) {
	handler := NewTriageHandler(services.NewEmergencyDetectionService(), nil)

	body := `{"text": "quisiera agendar un chequeo anual"}`
	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.AssessEmergency(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var assessment entities.EmergencyAssessment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&assessment))
	assert.False(t, assessment.IsEmergency)
	assert.Equal(t, entities.UrgencyRoutine, assessment.Urgency)
}

func TestTriageHandler_AssessEmergency_AgeContext(t *testing.T) {
	handler := NewTriageHandler(services.NewEmergencyDetectionService(), nil)

	withAge := `{"text": "tiene fiebre persistente", "age": 1}`
	withoutAge := `{"text": "tiene fiebre persistente"}`

	scores := make(map[string]float64)
	for name, body := range map[string]string{"with": withAge, "without": withoutAge} {
		req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.AssessEmergency(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var assessment entities.EmergencyAssessment
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&assessment))
		scores[name] = assessment.OverallScore
	}

	assert.Greater(t, scores["with"], scores["without"])
}

func TestTriageHandler_AssessEmergency_InvalidJSON(t *testing.T) {
	handler := NewTriageHandler(services.NewEmergencyDetectionService(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	handler.AssessEmergency(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriageHandler_AssessEmergency_TextTooLong(t *testing.T) {
	handler := NewTriageHandler(services.NewEmergencyDetectionService(), nil)

	body, err := json.Marshal(map[string]string{"text": strings.Repeat("a", maxQueryLength+1)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()

	handler.AssessEmergency(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
