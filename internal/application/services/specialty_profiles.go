package services

// SpecialtyProfile parameterizes one simulated specialist: the keyword table
// driving routing confidence and the persona prompt handed to the LLM. There
// is deliberately no per-specialty type hierarchy; behavior differences live
// in this data.
type SpecialtyProfile struct {
	Name string

	// Confidence tuning. Keywords get PerKeywordWeight each; ConditionTerms
	// and SymptomTerms get their own weights (only emergency medicine uses
	// the tiers today). The total boost is capped at BoostCap.
	Keywords         []string
	ConditionTerms   []string
	SymptomTerms     []string
	PerKeywordWeight float64
	ConditionWeight  float64
	SymptomWeight    float64
	BoostCap         float64

	// Persona handed to the text-generation collaborator. Content quality is
	// the collaborator's concern, not ours.
	SystemPrompt string
}

const (
	SpecialtyGeneralMedicine   = "general_medicine"
	SpecialtyCardiology        = "cardiology"
	SpecialtyNeurology         = "neurology"
	SpecialtyPediatrics        = "pediatrics"
	SpecialtyDermatology       = "dermatology"
	SpecialtyPsychology        = "psychology"
	SpecialtyNutrition         = "nutrition"
	SpecialtyEmergencyMedicine = "emergency_medicine"
)

func defaultSpecialtyProfiles() []SpecialtyProfile {
	return []SpecialtyProfile{
		{
			Name: SpecialtyGeneralMedicine,
			Keywords: []string{
				"fiebre", "fever", "gripe", "flu", "malestar", "dolor de cabeza",
				"headache", "tos", "cough", "cansancio", "fatigue", "resfriado",
			},
			PerKeywordWeight: 0.1,
			BoostCap:         0.4,
			SystemPrompt: "Eres un médico general con amplia experiencia en atención primaria. " +
				"Responde en el idioma del paciente, con lenguaje claro y sin alarmar. " +
				"Incluye una sección de recomendaciones en viñetas.",
		},
		{
			Name: SpecialtyCardiology,
			Keywords: []string{
				"corazón", "heart", "pecho", "chest", "palpitaciones", "palpitations",
				"presión arterial", "blood pressure", "arritmia", "arrhythmia",
				"colesterol", "cholesterol",
			},
			PerKeywordWeight: 0.1,
			BoostCap:         0.4,
			SystemPrompt: "Eres un cardiólogo. Evalúa síntomas cardiovasculares con prudencia " +
				"clínica, distingue dolor torácico típico de atípico y recomienda estudios " +
				"solo cuando aportan valor. Incluye recomendaciones en viñetas.",
		},
		{
			Name: SpecialtyNeurology,
			Keywords: []string{
				"cabeza", "head", "migraña", "migraine", "mareo", "dizziness",
				"convulsión", "seizure", "hormigueo", "tingling", "memoria", "memory",
			},
			PerKeywordWeight: 0.1,
			BoostCap:         0.4,
			SystemPrompt: "Eres un neurólogo. Analiza síntomas neurológicos, identifica " +
				"señales de alarma y explica cuándo un síntoma amerita estudio urgente. " +
				"Incluye recomendaciones en viñetas.",
		},
		{
			Name: SpecialtyPediatrics,
			Keywords: []string{
				"bebé", "baby", "niño", "niña", "child", "hijo", "hija", "vacuna",
				"vaccine", "pediatra", "recién nacido", "newborn",
			},
			PerKeywordWeight: 0.12,
			BoostCap:         0.4,
			SystemPrompt: "Eres un pediatra. Responde pensando en dosis y riesgos por edad, " +
				"y orienta a los padres sobre signos de alarma en menores. " +
				"Incluye recomendaciones en viñetas.",
		},
		{
			Name: SpecialtyDermatology,
			Keywords: []string{
				"piel", "skin", "erupción", "rash", "acné", "acne", "mancha",
				"lunar", "mole", "picazón", "itching", "eczema",
			},
			PerKeywordWeight: 0.1,
			BoostCap:         0.3,
			SystemPrompt: "Eres un dermatólogo. Describe las lesiones con precisión, " +
				"sugiere cuidados de la piel y aclara cuándo una lesión debe examinarse " +
				"en persona. Incluye recomendaciones en viñetas.",
		},
		{
			Name: SpecialtyPsychology,
			Keywords: []string{
				"ansiedad", "anxiety", "depresión", "depression", "estrés", "stress",
				"insomnio", "insomnia", "pánico", "panic", "tristeza", "sadness",
			},
			PerKeywordWeight: 0.1,
			BoostCap:         0.3,
			SystemPrompt: "Eres un psicólogo clínico. Responde con empatía, valida las " +
				"emociones del paciente y ofrece estrategias concretas. Nunca minimices " +
				"ideas de autolesión: deriva de inmediato. Incluye recomendaciones en viñetas.",
		},
		{
			Name: SpecialtyNutrition,
			Keywords: []string{
				"dieta", "diet", "peso", "weight", "alimentación", "nutrition",
				"vitamina", "vitamin", "azúcar", "sugar", "obesidad", "obesity",
			},
			PerKeywordWeight: 0.1,
			BoostCap:         0.3,
			SystemPrompt: "Eres un nutriólogo. Da pautas de alimentación realistas y " +
				"adaptadas al contexto del paciente, sin dietas extremas. " +
				"Incluye recomendaciones en viñetas.",
		},
		{
			Name: SpecialtyEmergencyMedicine,
			Keywords: []string{
				"urgente", "urgent", "emergencia", "emergency", "grave", "severe",
				"accidente", "accident", "911",
			},
			ConditionTerms: []string{
				"infarto", "heart attack", "derrame", "stroke", "anafilaxia",
				"anaphylaxis", "hemorragia", "hemorrhage",
			},
			SymptomTerms: []string{
				"dolor de pecho", "chest pain", "no respira", "not breathing",
				"inconsciente", "unconscious", "sangrado abundante", "heavy bleeding",
			},
			PerKeywordWeight: 0.1,
			ConditionWeight:  0.15,
			SymptomWeight:    0.12,
			BoostCap:         0.6,
			SystemPrompt: "Eres un médico de urgencias. Prioriza descartar riesgo vital, " +
				"sé directo sobre cuándo llamar al 911 y qué hacer mientras llega ayuda. " +
				"Incluye recomendaciones en viñetas.",
		},
	}
}
