package services

import "github.com/consilium-health/consilium/internal/domain/entities"

// The pattern tables below are hand-tuned, carried over from clinical review
// sessions rather than derived from a validated triage scale. Treat every
// constant as configuration: changes belong to domain-expert review, not
// refactoring.

func defaultPatternRules() []entities.PatternRule {
	return []entities.PatternRule{
		// critical tier
		{
			ID:       "cardiac_arrest",
			Category: entities.PatternCritical,
			Keywords: []string{
				"paro cardiaco", "paro cardíaco", "cardiac arrest", "no respira",
				"not breathing", "sin pulso", "no pulse", "inconsciente", "unconscious",
				"no responde", "unresponsive",
			},
			BaseSeverity:   1.0,
			Urgency:        entities.UrgencyCritical,
			Description:    "posible paro cardiorrespiratorio o pérdida de conciencia",
			Recommendation: "Llame al 911 de inmediato e inicie RCP si sabe hacerlo",
		},
		{
			ID:       "stroke",
			Category: entities.PatternCritical,
			Keywords: []string{
				"derrame cerebral", "stroke", "cara caída", "facial droop",
				"no puede hablar", "cannot speak", "dificultad para hablar de repente",
				"parálisis repentina", "sudden paralysis", "debilidad en un lado",
				"weakness on one side",
			},
			BaseSeverity:   0.95,
			Urgency:        entities.UrgencyCritical,
			Description:    "signos compatibles con un evento cerebrovascular",
			Recommendation: "Llame al 911: cada minuto cuenta en un posible derrame",
		},
		{
			ID:       "severe_bleeding",
			Category: entities.PatternCritical,
			Keywords: []string{
				"sangrado abundante", "heavy bleeding", "hemorragia", "hemorrhage",
				"sangre que no para", "bleeding that won't stop", "vomitando sangre",
				"vomiting blood",
			},
			BaseSeverity:   0.9,
			Urgency:        entities.UrgencyCritical,
			Description:    "hemorragia activa significativa",
			Recommendation: "Aplique presión directa y llame a emergencias",
		},
		{
			ID:       "anaphylaxis",
			Category: entities.PatternCritical,
			Keywords: []string{
				"anafilaxia", "anaphylaxis", "garganta cerrada", "throat closing",
				"lengua hinchada", "swollen tongue", "reacción alérgica grave",
				"severe allergic reaction",
			},
			BaseSeverity:   0.95,
			Urgency:        entities.UrgencyCritical,
			Description:    "posible reacción anafiláctica",
			Recommendation: "Use epinefrina si dispone de ella y llame al 911",
		},
		// high tier
		{
			ID:       "chest_pain",
			Category: entities.PatternHigh,
			Keywords: []string{
				"dolor de pecho", "dolor en el pecho", "chest pain", "presión en el pecho",
				"chest pressure", "opresión en el pecho", "dolor torácico",
			},
			BaseSeverity:   0.8,
			Urgency:        entities.UrgencyHigh,
			Description:    "dolor torácico que puede ser de origen cardíaco",
			Recommendation: "Acuda a urgencias lo antes posible",
		},
		{
			ID:       "breathing_difficulty",
			Category: entities.PatternHigh,
			Keywords: []string{
				"dificultad para respirar", "difficulty breathing", "falta de aire",
				"shortness of breath", "no puedo respirar bien", "ahogo",
			},
			BaseSeverity:   0.75,
			Urgency:        entities.UrgencyHigh,
			Description:    "compromiso respiratorio",
			Recommendation: "Busque atención médica urgente",
		},
		{
			ID:       "severe_abdominal_pain",
			Category: entities.PatternHigh,
			Keywords: []string{
				"dolor abdominal intenso", "severe abdominal pain",
				"dolor fuerte de estómago", "abdomen rígido", "rigid abdomen",
			},
			BaseSeverity:   0.7,
			Urgency:        entities.UrgencyHigh,
			Description:    "dolor abdominal agudo de alta intensidad",
			Recommendation: "Acuda a un servicio de urgencias para evaluación",
		},
		{
			ID:       "high_fever",
			Category: entities.PatternHigh,
			Keywords: []string{
				"fiebre muy alta", "fiebre de 40", "fever of 104", "very high fever",
				"fiebre con rigidez de cuello", "fever with stiff neck",
			},
			BaseSeverity:   0.7,
			Urgency:        entities.UrgencyHigh,
			Description:    "fiebre elevada con posibles signos de alarma",
			Recommendation: "Busque evaluación médica el mismo día",
		},
		// moderate tier
		{
			ID:       "persistent_symptoms",
			Category: entities.PatternModerate,
			Keywords: []string{
				"fiebre persistente", "persistent fever", "vómitos continuos",
				"persistent vomiting", "dolor que no mejora", "pain that won't improve",
				"varios días", "several days",
			},
			BaseSeverity:   0.5,
			Urgency:        entities.UrgencyModerate,
			Description:    "síntomas persistentes sin mejoría",
			Recommendation: "Programe una consulta médica en las próximas 24-48 horas",
		},
		{
			ID:       "dehydration",
			Category: entities.PatternModerate,
			Keywords: []string{
				"deshidratación", "dehydration", "no orina", "not urinating",
				"boca muy seca", "very dry mouth", "mareo al levantarse",
			},
			BaseSeverity:   0.5,
			Urgency:        entities.UrgencyModerate,
			Description:    "posible deshidratación",
			Recommendation: "Hidrátese y consulte si los síntomas persisten",
		},
		// warning-symptom categories
		{
			ID:       "neurological_warning",
			Category: entities.PatternWarning,
			Keywords: []string{
				"confusión repentina", "sudden confusion", "convulsión", "seizure",
				"dolor de cabeza explosivo", "worst headache", "visión doble",
				"double vision",
			},
			BaseSeverity:   0.65,
			Urgency:        entities.UrgencyHigh,
			Description:    "signos de alarma neurológicos",
			Recommendation: "Requiere evaluación neurológica urgente",
		},
		{
			ID:       "cardiovascular_warning",
			Category: entities.PatternWarning,
			Keywords: []string{
				"palpitaciones con mareo", "palpitations with dizziness",
				"desmayo", "fainting", "síncope", "syncope",
			},
			BaseSeverity:   0.6,
			Urgency:        entities.UrgencyModerate,
			Description:    "signos de alarma cardiovasculares",
			Recommendation: "Consulte con cardiología o acuda a urgencias si se repite",
		},
	}
}

func defaultCombinationRules() []entities.CombinationRule {
	return []entities.CombinationRule{
		{
			ID: "heart_attack_cluster",
			Members: []string{
				"dolor de pecho", "chest pain", "sudoración", "sweating",
				"náuseas", "nausea", "dolor en el brazo", "arm pain",
				"dolor en la mandíbula", "jaw pain",
			},
			Threshold:    2,
			ScoreBonus:   0.25,
			UrgencyBoost: 2,
			Description:  "combinación compatible con infarto agudo de miocardio",
		},
		{
			ID: "stroke_cluster",
			Members: []string{
				"cara caída", "facial droop", "confusión", "confusion",
				"dificultad para hablar", "trouble speaking",
				"debilidad en un lado", "weakness on one side",
			},
			Threshold:    2,
			ScoreBonus:   0.25,
			UrgencyBoost: 2,
			Description:  "combinación compatible con evento cerebrovascular",
		},
		{
			ID: "sepsis_cluster",
			Members: []string{
				"fiebre", "fever", "confusión", "confusion",
				"respiración rápida", "rapid breathing", "escalofríos", "chills",
			},
			Threshold:    2,
			ScoreBonus:   0.15,
			UrgencyBoost: 1,
			Description:  "combinación compatible con infección sistémica",
		},
		{
			ID: "dehydration_cluster",
			Members: []string{
				"vómito", "vomiting", "diarrea", "diarrhea",
				"mareo", "dizziness", "boca seca", "dry mouth",
			},
			Threshold:    2,
			ScoreBonus:   0.05,
			UrgencyBoost: 0,
			Description:  "combinación compatible con deshidratación",
		},
	}
}

// ageBracket holds the age-based severity modifier and the phrases that
// reveal the bracket when no structured age is provided.
type ageBracket struct {
	id              string
	matches         func(age int) bool
	phrases         []string
	multiplier      float64
	specialConcerns []string
}

func defaultAgeBrackets() []ageBracket {
	return []ageBracket{
		{
			id:      "infant",
			matches: func(age int) bool { return age < 2 },
			phrases: []string{
				"mi bebé", "my baby", "recién nacido", "newborn",
				"meses de nacido", "months old",
			},
			multiplier: 1.3,
			specialConcerns: []string{
				"no quiere comer", "won't eat", "llanto inconsolable",
				"inconsolable crying", "fontanela hundida",
			},
		},
		{
			id:      "child",
			matches: func(age int) bool { return age >= 2 && age <= 12 },
			phrases: []string{
				"mi hijo", "mi hija", "my child", "my son", "my daughter",
				"niño de", "niña de",
			},
			multiplier: 1.2,
			specialConcerns: []string{
				"muy decaído", "very lethargic", "no despierta", "won't wake up",
			},
		},
		{
			id:      "elderly",
			matches: func(age int) bool { return age > 65 },
			phrases: []string{
				"mi abuelo", "mi abuela", "adulto mayor", "anciano", "anciana",
				"elderly", "my grandmother", "my grandfather",
			},
			multiplier: 1.2,
			specialConcerns: []string{
				"caída con golpe en la cabeza", "fall with head injury",
				"confusión nueva", "new confusion",
			},
		},
	}
}

// urgencyGuidance turns the final urgency level into patient-facing text.
type urgencyGuidance struct {
	recommendation  string
	timeSensitivity string
	actionRequired  string
}

var urgencyGuidanceTable = map[entities.UrgencyLevel]urgencyGuidance{
	entities.UrgencyCritical: {
		recommendation:  "Llame a los servicios de emergencia (911) ahora mismo",
		timeSensitivity: "inmediata: actúe en minutos",
		actionRequired:  "llamar al 911",
	},
	entities.UrgencyHigh: {
		recommendation:  "Acuda a un servicio de urgencias lo antes posible",
		timeSensitivity: "en las próximas horas",
		actionRequired:  "acudir a urgencias",
	},
	entities.UrgencyModerate: {
		recommendation:  "Consulte a un médico en las próximas 24-48 horas",
		timeSensitivity: "en 1-2 días",
		actionRequired:  "agendar consulta prioritaria",
	},
	entities.UrgencyLow: {
		recommendation:  "Programe una consulta médica esta semana",
		timeSensitivity: "esta semana",
		actionRequired:  "agendar consulta",
	},
	entities.UrgencyRoutine: {
		recommendation:  "Consulta de rutina; vigile la evolución de los síntomas",
		timeSensitivity: "sin urgencia",
		actionRequired:  "consulta de rutina",
	},
}
