package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consilium-health/consilium/internal/domain/entities"
)

// scriptedLLM routes completions by system prompt so each specialist persona
// can get its own scripted answer. Safe for the concurrent fan-out.
type scriptedLLM struct {
	mu        sync.Mutex
	responses map[string]string
	failFor   map[string]bool
	fallback  string
	prompts   []string
}

func (f *scriptedLLM) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, userPrompt)
	if f.failFor[systemPrompt] {
		return "", errors.New("llm unavailable")
	}
	if response, ok := f.responses[systemPrompt]; ok {
		return response, nil
	}
	if f.fallback != "" {
		return f.fallback, nil
	}
	return "respuesta del especialista", nil
}

type fakeConsultationRepo struct {
	mu      sync.Mutex
	created []*entities.Consultation
	err     error
}

func (f *fakeConsultationRepo) Create(ctx context.Context, consultation *entities.Consultation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, consultation)
	return nil
}

func (f *fakeConsultationRepo) GetByID(ctx context.Context, id string) (*entities.Consultation, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConsultationRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.Consultation, error) {
	return nil, nil
}

type fakeConversationStore struct {
	mu       sync.Mutex
	appended []*entities.ConversationTurn
	history  []*entities.ConversationTurn
}

func (f *fakeConversationStore) Append(ctx context.Context, sessionID string, turn *entities.ConversationTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, turn)
	return nil
}

func (f *fakeConversationStore) History(ctx context.Context, sessionID string, limit int) ([]*entities.ConversationTurn, error) {
	return f.history, nil
}

func (f *fakeConversationStore) Clear(ctx context.Context, sessionID string) error {
	return nil
}

func promptFor(t *testing.T, specialty string) string {
	t.Helper()
	for _, profile := range defaultSpecialtyProfiles() {
		if profile.Name == specialty {
			return profile.SystemPrompt
		}
	}
	t.Fatalf("unknown specialty %q", specialty)
	return ""
}

// newTestConsultationService wires real services around the scripted LLM.
// Typed nils must not reach the interface fields, hence the explicit checks.
func newTestConsultationService(llm *scriptedLLM, repo *fakeConsultationRepo, store *fakeConversationStore) *ConsultationService {
	service := NewConsultationService(
		NewEmergencyDetectionService(),
		NewSpecialtyConfidenceService(nil),
		NewConsensusService(llm),
		llm,
		nil,
		nil,
	)
	if repo != nil {
		service.repository = repo
	}
	if store != nil {
		service.conversations = store
	}
	return service
}

func TestConsultationService_Consult_RoutineQuery(t *testing.T) {
	llm := &scriptedLLM{
		responses: map[string]string{
			promptFor(t, SpecialtyGeneralMedicine): "Parece un cuadro gripal.\n- Beba líquidos\n- Descanse",
		},
	}
	service := newTestConsultationService(llm, nil, nil)

	result, err := service.Consult(context.Background(), "", "tengo gripe y fiebre", nil)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.Emergency.IsEmergency)
	assert.Equal(t, []string{SpecialtyGeneralMedicine}, result.SpecialtiesConsulted)
	require.NotNil(t, result.Consensus)
	assert.Equal(t, SpecialtyGeneralMedicine, result.Consensus.PrimarySpecialty)
}

func TestConsultationService_Consult_ParsesBulletRecommendations(t *testing.T) {
	llm := &scriptedLLM{
		responses: map[string]string{
			promptFor(t, SpecialtyGeneralMedicine): "Parece un cuadro gripal.\n- Beba líquidos\n- Descanse",
		},
	}
	service := newTestConsultationService(llm, nil, nil)

	result, err := service.Consult(context.Background(), "", "tengo gripe y fiebre", nil)

	require.NoError(t, err)
	joined := strings.Join(result.Consensus.PatientRecommendations, "\n")
	assert.Contains(t, joined, "Beba líquidos")
	assert.Contains(t, joined, "Descanse")
}

func TestConsultationService_Consult_EmergencySeatsEmergencyMedicine(t *testing.T) {
	llm := &scriptedLLM{fallback: "Acuda a urgencias de inmediato."}
	service := newTestConsultationService(llm, nil, nil)

	result, err := service.Consult(context.Background(), "", "tengo un dolor de pecho intenso", nil)

	require.NoError(t, err)
	assert.True(t, result.Emergency.IsEmergency)
	require.NotEmpty(t, result.SpecialtiesConsulted)
	assert.Equal(t, SpecialtyEmergencyMedicine, result.SpecialtiesConsulted[0])
	assert.Equal(t, SpecialtyEmergencyMedicine, result.Consensus.PrimarySpecialty)
}

func TestConsultationService_Consult_PrimaryFailoverInIssueOrder(t *testing.T) {
	llm := &scriptedLLM{
		fallback: "Opinión del especialista.",
		failFor: map[string]bool{
			promptFor(t, SpecialtyEmergencyMedicine): true,
		},
	}
	service := newTestConsultationService(llm, nil, nil)

	result, err := service.Consult(context.Background(), "", "tengo un dolor de pecho intenso", nil)

	require.NoError(t, err)
	// emergency medicine was seated first but its call failed; the next
	// specialist in issue order takes over as primary
	assert.Equal(t, SpecialtyEmergencyMedicine, result.SpecialtiesConsulted[0])
	require.Greater(t, len(result.SpecialtiesConsulted), 1)
	assert.Equal(t, result.SpecialtiesConsulted[1], result.Consensus.PrimarySpecialty)
}

func TestConsultationService_Consult_AllSpecialistsFail(t *testing.T) {
	llm := &scriptedLLM{
		failFor: map[string]bool{
			promptFor(t, SpecialtyGeneralMedicine): true,
		},
	}
	service := newTestConsultationService(llm, nil, nil)

	result, err := service.Consult(context.Background(), "", "consulta general", nil)

	require.NoError(t, err)
	require.NotNil(t, result.Consensus)
	assert.Equal(t, fallbackMessage, result.Consensus.PrimaryResponse)
}

func TestConsultationService_Consult_PersistsRecordAndTurns(t *testing.T) {
	llm := &scriptedLLM{fallback: "Todo indica un cuadro leve."}
	repo := &fakeConsultationRepo{}
	store := &fakeConversationStore{}
	service := newTestConsultationService(llm, repo, store)

	result, err := service.Consult(context.Background(), "session-1", "tengo gripe", nil)

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	record := repo.created[0]
	assert.Equal(t, result.ID, record.ID)
	assert.Equal(t, "session-1", record.SessionID)
	assert.Equal(t, "tengo gripe", record.Query)
	assert.Equal(t, result.Consensus.PrimarySpecialty, record.PrimarySpecialty)

	require.Len(t, store.appended, 2)
	assert.Equal(t, "user", store.appended[0].Role)
	assert.Equal(t, "tengo gripe", store.appended[0].Content)
	assert.Equal(t, "assistant", store.appended[1].Role)
}

func TestConsultationService_Consult_RepositoryFailureIsNotFatal(t *testing.T) {
	llm := &scriptedLLM{fallback: "Respuesta."}
	repo := &fakeConsultationRepo{err: errors.New("db down")}
	service := newTestConsultationService(llm, repo, nil)

	result, err := service.Consult(context.Background(), "session-1", "tengo gripe", nil)

	require.NoError(t, err)
	assert.NotNil(t, result.Consensus)
}

func TestConsultationService_Consult_HistoryFeedsPrompt(t *testing.T) {
	llm := &scriptedLLM{fallback: "Respuesta con contexto."}
	store := &fakeConversationStore{
		history: []*entities.ConversationTurn{
			{Role: "user", Content: "ayer consulté por fiebre"},
			{Role: "assistant", Content: "le recomendé hidratación"},
		},
	}
	service := newTestConsultationService(llm, nil, store)

	_, err := service.Consult(context.Background(), "session-1", "sigo con malestar", nil)

	require.NoError(t, err)
	require.NotEmpty(t, llm.prompts)
	assert.Contains(t, llm.prompts[0], "Contexto de la conversación previa")
	assert.Contains(t, llm.prompts[0], "ayer consulté por fiebre")
	assert.Contains(t, llm.prompts[0], "Consulta actual: sigo con malestar")
}

func TestParseRecommendations(t *testing.T) {
	text := "Evaluación inicial.\n" +
		"- Beba líquidos\n" +
		"• Descanse al menos 8 horas\n" +
		"* Evite el alcohol\n" +
		"1. Tome paracetamol\n" +
		"2) Vigile la temperatura\n" +
		"Esto no es una viñeta."

	recommendations := parseRecommendations(text)

	assert.Equal(t, []string{
		"Beba líquidos",
		"Descanse al menos 8 horas",
		"Evite el alcohol",
		"Tome paracetamol",
		"Vigile la temperatura",
	}, recommendations)
}

func TestSpecialistPrompt_NoHistory(t *testing.T) {
	assert.Equal(t, "tengo tos", specialistPrompt("tengo tos", nil))
}
