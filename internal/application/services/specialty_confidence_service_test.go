package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecialtyConfidenceService_AdjustConfidence_KeywordBoost(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	// two cardiology keywords, 0.1 each
	adjusted := service.AdjustConfidence(0.5, "me duele el pecho y tengo palpitaciones", SpecialtyCardiology)

	assert.InDelta(t, 0.7, adjusted, 1e-9)
}

func TestSpecialtyConfidenceService_AdjustConfidence_NoMatches(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	adjusted := service.AdjustConfidence(0.5, "tengo una duda administrativa", SpecialtyCardiology)

	assert.Equal(t, 0.5, adjusted)
}

func TestSpecialtyConfidenceService_AdjustConfidence_BoostCapped(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	// six cardiology keywords would add 0.6 uncapped; cap is 0.4
	query := "corazón pecho palpitaciones arritmia colesterol presión arterial"
	adjusted := service.AdjustConfidence(0.5, query, SpecialtyCardiology)

	assert.InDelta(t, 0.9, adjusted, 1e-9)
}

func TestSpecialtyConfidenceService_AdjustConfidence_TieredWeights(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	// one keyword (0.1), one condition term (0.15), one symptom term (0.12)
	query := "es una emergencia, creo que es un infarto, tiene dolor de pecho"
	adjusted := service.AdjustConfidence(0.5, query, SpecialtyEmergencyMedicine)

	assert.InDelta(t, 0.87, adjusted, 1e-9)
}

func TestSpecialtyConfidenceService_AdjustConfidence_Bounds(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	// floor at 0.1 even for a low base
	assert.Equal(t, 0.1, service.AdjustConfidence(0.0, "sin coincidencias", SpecialtyNeurology))
	assert.Equal(t, 0.1, service.AdjustConfidence(-1.0, "sin coincidencias", SpecialtyNeurology))

	// ceiling at 1.0
	query := "corazón pecho palpitaciones arritmia"
	assert.Equal(t, 1.0, service.AdjustConfidence(0.9, query, SpecialtyCardiology))
}

func TestSpecialtyConfidenceService_AdjustConfidence_UnknownSpecialty(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	assert.Equal(t, 0.5, service.AdjustConfidence(0.5, "dolor de pecho", "astrology"))
}

func TestSpecialtyConfidenceService_AdjustConfidence_Monotonic(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	queries := []string{
		"consulta",
		"me duele el pecho",
		"me duele el pecho y el corazón",
		"me duele el pecho, el corazón y tengo palpitaciones",
	}

	prev := 0.0
	for _, query := range queries {
		adjusted := service.AdjustConfidence(0.5, query, SpecialtyCardiology)
		assert.GreaterOrEqual(t, adjusted, prev, "query: %q", query)
		prev = adjusted
	}
}

func TestSpecialtyConfidenceService_Profiles_DeterministicOrder(t *testing.T) {
	service := NewSpecialtyConfidenceService(nil)

	first := service.Profiles()
	second := service.Profiles()

	require.Len(t, first, 8)
	assert.Equal(t, SpecialtyGeneralMedicine, first[0].Name)
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
	}
}

func TestSpecialtyConfidenceService_CustomProfiles(t *testing.T) {
	custom := []SpecialtyProfile{
		{Name: "oncology", Keywords: []string{"tumor"}, PerKeywordWeight: 0.2, BoostCap: 0.4},
	}
	service := NewSpecialtyConfidenceService(custom)

	_, ok := service.Profile(SpecialtyCardiology)
	assert.False(t, ok)

	adjusted := service.AdjustConfidence(0.5, "encontraron un tumor", "oncology")
	assert.InDelta(t, 0.7, adjusted, 1e-9)
}
