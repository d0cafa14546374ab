package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consilium-health/consilium/internal/application/services"
	"github.com/consilium-health/consilium/internal/domain/entities"
	apperrors "github.com/consilium-health/consilium/pkg/errors"
)

type stubConsultationService struct {
	result *services.ConsultationResult
	err    error

	lastSessionID string
	lastQuery     string
	lastPatient   *entities.PatientContext
}

func (s *stubConsultationService) Consult(ctx context.Context, sessionID, query string, patient *entities.PatientContext) (*services.ConsultationResult, error) {
	s.lastSessionID = sessionID
	s.lastQuery = query
	s.lastPatient = patient
	return s.result, s.err
}

type stubConsultationRepo struct {
	consultation *entities.Consultation
	list         []*entities.Consultation
	err          error
}

func (s *stubConsultationRepo) Create(ctx context.Context, consultation *entities.Consultation) error {
	return nil
}

func (s *stubConsultationRepo) GetByID(ctx context.Context, id string) (*entities.Consultation, error) {
	return s.consultation, s.err
}

func (s *stubConsultationRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.Consultation, error) {
	return s.list, s.err
}

func consultationResultFixture() *services.ConsultationResult {
	return &services.ConsultationResult{
		ID:    "c-123",
		Query: "tengo fiebre",
		Emergency: entities.EmergencyAssessment{
			IsEmergency: false,
			Urgency:     entities.UrgencyRoutine,
		},
		Consensus: &entities.ConsensusResponse{
			PrimarySpecialty: "general_medicine",
			PrimaryResponse:  "Parece un cuadro leve.",
		},
		SpecialtiesConsulted: []string{"general_medicine"},
		CreatedAt:            time.Now().UTC(),
	}
}

func TestConsultationHandler_CreateConsultation_Success(t *testing.T) {
	service := &stubConsultationService{result: consultationResultFixture()}
	handler := NewConsultationHandler(service, nil, nil)

	body := `{"query": "tengo fiebre", "session_id": "s-1", "age": 34}`
	req := httptest.NewRequest(http.MethodPost, "/api/consultations", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateConsultation(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-1", service.lastSessionID)
	assert.Equal(t, "tengo fiebre", service.lastQuery)
	require.NotNil(t, service.lastPatient)
	require.NotNil(t, service.lastPatient.Age)
	assert.Equal(t, 34, *service.lastPatient.Age)

	var decoded services.ConsultationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	assert.Equal(t, "c-123", decoded.ID)
	assert.Equal(t, "general_medicine", decoded.Consensus.PrimarySpecialty)
}

func TestConsultationHandler_CreateConsultation_MissingQuery(t *testing.T) {
	handler := NewConsultationHandler(&stubConsultationService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/consultations", strings.NewReader(`{"query": "   "}`))
	rec := httptest.NewRecorder()

	handler.CreateConsultation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsultationHandler_CreateConsultation_InvalidJSON(t *testing.T) {
	handler := NewConsultationHandler(&stubConsultationService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/consultations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.CreateConsultation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsultationHandler_CreateConsultation_QueryTooLong(t *testing.T) {
	handler := NewConsultationHandler(&stubConsultationService{}, nil, nil)

	long := strings.Repeat("a", maxQueryLength+1)
	body, err := json.Marshal(map[string]string{"query": long})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/consultations", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateConsultation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsultationHandler_CreateConsultation_AgeOutOfRange(t *testing.T) {
	handler := NewConsultationHandler(&stubConsultationService{}, nil, nil)

	for _, body := range []string{`{"query": "q", "age": -1}`, `{"query": "q", "age": 131}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/consultations", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateConsultation(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestConsultationHandler_CreateConsultation_ServiceError(t *testing.T) {
	service := &stubConsultationService{err: errors.New("boom")}
	handler := NewConsultationHandler(service, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/consultations", strings.NewReader(`{"query": "tengo fiebre"}`))
	rec := httptest.NewRecorder()

	handler.CreateConsultation(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConsultationHandler_GetConsultation_Success(t *testing.T) {
	repo := &stubConsultationRepo{consultation: &entities.Consultation{ID: "c-123", Query: "tengo fiebre"}}
	handler := NewConsultationHandler(&stubConsultationService{}, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/consultations/c-123", nil)
	req.SetPathValue("id", "c-123")
	rec := httptest.NewRecorder()

	handler.GetConsultation(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var decoded entities.Consultation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	assert.Equal(t, "c-123", decoded.ID)
}

func TestConsultationHandler_GetConsultation_NotFound(t *testing.T) {
	repo := &stubConsultationRepo{err: apperrors.NewNotFoundError("consultation not found")}
	handler := NewConsultationHandler(&stubConsultationService{}, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/consultations/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	handler.GetConsultation(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConsultationHandler_GetConsultation_NoRepository(t *testing.T) {
	handler := NewConsultationHandler(&stubConsultationService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/consultations/c-123", nil)
	req.SetPathValue("id", "c-123")
	rec := httptest.NewRecorder()

	handler.GetConsultation(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConsultationHandler_ListSessionConsultations_EmptyIsArray(t *testing.T) {
	repo := &stubConsultationRepo{}
	handler := NewConsultationHandler(&stubConsultationService{}, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s-1/consultations", nil)
	req.SetPathValue("id", "s-1")
	rec := httptest.NewRecorder()

	handler.ListSessionConsultations(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"consultations":[]`)
}
