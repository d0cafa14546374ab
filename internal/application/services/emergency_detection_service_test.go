package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consilium-health/consilium/internal/domain/entities"
)

func TestEmergencyDetectionService_Detect_EmptyText(t *testing.T) {
	service := NewEmergencyDetectionService()

	assessment := service.Detect("", nil)

	assert.False(t, assessment.IsEmergency)
	assert.Equal(t, entities.UrgencyRoutine, assessment.Urgency)
	assert.Equal(t, 0.0, assessment.OverallScore)
	assert.Empty(t, assessment.Signals)
	assert.NotEmpty(t, assessment.Recommendation)
}

func TestEmergencyDetectionService_Detect_BenignText(t *testing.T) {
	service := NewEmergencyDetectionService()

	assessment := service.Detect("quisiera información sobre vacunas para un viaje", nil)

	assert.False(t, assessment.IsEmergency)
	assert.Equal(t, entities.UrgencyRoutine, assessment.Urgency)
	assert.Equal(t, 0.0, assessment.OverallScore)
}

func TestEmergencyDetectionService_Detect_CardiacArrest(t *testing.T) {
	service := NewEmergencyDetectionService()

	assessment := service.Detect("mi padre tuvo un paro cardiaco y no respira", nil)

	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, entities.UrgencyCritical, assessment.Urgency)
	assert.Equal(t, 1.0, assessment.OverallScore)
	require.Len(t, assessment.Signals, 1)
	assert.Equal(t, "cardiac_arrest", assessment.Signals[0].Type)
	assert.ElementsMatch(t, []string{"paro cardiaco", "no respira"}, assessment.Signals[0].MatchedKeywords)
	assert.Contains(t, assessment.Recommendation, "911")
	assert.NotEmpty(t, assessment.TimeSensitivity)
	assert.NotEmpty(t, assessment.ActionRequired)
}

func TestEmergencyDetectionService_Detect_ChestPainAlone(t *testing.T) {
	service := NewEmergencyDetectionService()

	assessment := service.Detect("tengo dolor de pecho desde hace una hora", nil)

	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, entities.UrgencyHigh, assessment.Urgency)
	assert.InDelta(t, 0.8, assessment.OverallScore, 1e-9)
}

func TestEmergencyDetectionService_Detect_HeartAttackCluster(t *testing.T) {
	service := NewEmergencyDetectionService()

	assessment := service.Detect("tengo dolor de pecho con sudoración y náuseas", nil)

	// chest_pain pattern plus the heart attack combination
	require.Len(t, assessment.Signals, 2)
	assert.Equal(t, entities.UrgencyCritical, assessment.Urgency)
	// mean(0.8, 0.95) plus the multi-signal bonus
	assert.InDelta(t, 0.925, assessment.OverallScore, 1e-9)
	assert.True(t, assessment.IsEmergency)
}

func TestEmergencyDetectionService_Detect_PrimaryConcernIsHighestSeverity(t *testing.T) {
	service := NewEmergencyDetectionService()

	assessment := service.Detect("tengo fiebre persistente y ahora dolor de pecho", nil)

	assert.Equal(t, "dolor torácico que puede ser de origen cardíaco", assessment.PrimaryConcern)
}

func TestEmergencyDetectionService_Detect_StructuredAgeRaisesScore(t *testing.T) {
	service := NewEmergencyDetectionService()
	age := 1

	baseline := service.Detect("fiebre persistente desde ayer", nil)
	infant := service.Detect("fiebre persistente desde ayer", &entities.PatientContext{Age: &age})

	assert.GreaterOrEqual(t, infant.OverallScore, baseline.OverallScore)
	assert.InDelta(t, 0.5, baseline.OverallScore, 1e-9)
	assert.InDelta(t, 0.65, infant.OverallScore, 1e-9)
}

func TestEmergencyDetectionService_Detect_AgePhraseFallback(t *testing.T) {
	service := NewEmergencyDetectionService()

	baseline := service.Detect("tiene fiebre persistente", nil)
	elderly := service.Detect("mi abuela tiene fiebre persistente", nil)

	assert.Greater(t, elderly.OverallScore, baseline.OverallScore)
}

func TestEmergencyDetectionService_Detect_SpecialConcernForcesHigh(t *testing.T) {
	service := NewEmergencyDetectionService()

	assessment := service.Detect("mi bebé no quiere comer y tiene fiebre persistente", nil)

	assert.GreaterOrEqual(t, assessment.Urgency, entities.UrgencyHigh)
	assert.True(t, assessment.IsEmergency)
}

func TestEmergencyDetectionService_Detect_ScoreAlwaysBounded(t *testing.T) {
	service := NewEmergencyDetectionService()
	age := 1

	texts := []string{
		"",
		"hola",
		"paro cardiaco no respira sin pulso inconsciente hemorragia anafilaxia garganta cerrada",
		"mi bebé tiene fiebre persistente, vómitos continuos, dificultad para respirar y convulsión",
		"dolor de pecho sudoración náuseas dolor en el brazo desmayo confusión fiebre",
	}

	for _, text := range texts {
		assessment := service.Detect(text, &entities.PatientContext{Age: &age})
		assert.GreaterOrEqual(t, assessment.OverallScore, 0.0, "text: %q", text)
		assert.LessOrEqual(t, assessment.OverallScore, 1.0, "text: %q", text)
		assert.True(t, assessment.Urgency.IsValid() || assessment.Urgency == entities.UrgencyRoutine)
	}
}

func TestCorrectUrgency_UpgradesOnly(t *testing.T) {
	assert.Equal(t, entities.UrgencyCritical, correctUrgency(entities.UrgencyLow, 0.95))
	assert.Equal(t, entities.UrgencyHigh, correctUrgency(entities.UrgencyRoutine, 0.75))
	assert.Equal(t, entities.UrgencyModerate, correctUrgency(entities.UrgencyLow, 0.55))
	// never downgrades
	assert.Equal(t, entities.UrgencyCritical, correctUrgency(entities.UrgencyCritical, 0.1))
	assert.Equal(t, entities.UrgencyHigh, correctUrgency(entities.UrgencyHigh, 0.3))
}

func TestAggregateScore_MultiSignalBonusCapped(t *testing.T) {
	signals := make([]entities.EmergencySignal, 6)
	for i := range signals {
		signals[i] = entities.EmergencySignal{SeverityScore: 0.5}
	}

	// bonus is 0.05 per extra signal, capped at 0.2
	assert.InDelta(t, 0.7, aggregateScore(signals), 1e-9)
}
