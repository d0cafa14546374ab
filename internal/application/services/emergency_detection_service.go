package services

import (
	"strings"

	"github.com/consilium-health/consilium/internal/domain/entities"
)

// EmergencyDetectionService maps free-text input plus optional patient context
// to an EmergencyAssessment. It is fully deterministic and does no I/O: all
// rules are fixed at construction time.
type EmergencyDetectionService struct {
	rules       []entities.PatternRule
	combos      []entities.CombinationRule
	ageBrackets []ageBracket
}

// NewEmergencyDetectionService creates a detection service with the default
// bilingual rule set.
func NewEmergencyDetectionService() *EmergencyDetectionService {
	return &EmergencyDetectionService{
		rules:       defaultPatternRules(),
		combos:      defaultCombinationRules(),
		ageBrackets: defaultAgeBrackets(),
	}
}

// Detect assesses the emergency level of the given text. It never fails: any
// internal error degrades to the conservative non-emergency assessment. Note
// that degrading toward "not flagged" is a known safety trade-off of this
// design, kept intentionally.
func (s *EmergencyDetectionService) Detect(text string, patient *entities.PatientContext) entities.EmergencyAssessment {
	assessment, err := s.detect(text, patient)
	if err != nil {
		return conservativeAssessment()
	}
	return assessment
}

func (s *EmergencyDetectionService) detect(text string, patient *entities.PatientContext) (entities.EmergencyAssessment, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return conservativeAssessment(), nil
	}

	signals := s.matchPatternSignals(normalized)

	if bracket := s.resolveAgeBracket(normalized, patient); bracket != nil {
		applyAgeModifier(signals, bracket, normalized)
	}

	signals = append(signals, s.matchCombinationSignals(normalized)...)

	if len(signals) == 0 {
		return conservativeAssessment(), nil
	}

	overall := aggregateScore(signals)
	urgency := maxUrgency(signals)
	urgency = correctUrgency(urgency, overall)

	primary := primaryConcern(signals)
	guidance := urgencyGuidanceTable[urgency]

	return entities.EmergencyAssessment{
		IsEmergency:     urgency >= entities.UrgencyModerate,
		Urgency:         urgency,
		OverallScore:    overall,
		Signals:         signals,
		PrimaryConcern:  primary,
		Recommendation:  guidance.recommendation,
		TimeSensitivity: guidance.timeSensitivity,
		ActionRequired:  guidance.actionRequired,
	}, nil
}

func (s *EmergencyDetectionService) matchPatternSignals(text string) []entities.EmergencySignal {
	var signals []entities.EmergencySignal
	for _, rule := range s.rules {
		matches := FindMatches(text, rule.Keywords)
		if len(matches) == 0 {
			continue
		}
		signals = append(signals, entities.EmergencySignal{
			Type:            rule.ID,
			Description:     rule.Description,
			SeverityScore:   rule.BaseSeverity,
			MatchedKeywords: matches,
			Urgency:         rule.Urgency,
			Recommendation:  rule.Recommendation,
		})
	}
	return signals
}

func (s *EmergencyDetectionService) matchCombinationSignals(text string) []entities.EmergencySignal {
	var signals []entities.EmergencySignal
	for _, combo := range s.combos {
		matches := FindMatches(text, combo.Members)
		if len(matches) < combo.Threshold {
			continue
		}
		urgency := entities.UrgencyModerate + entities.UrgencyLevel(combo.UrgencyBoost)
		if urgency > entities.UrgencyCritical {
			urgency = entities.UrgencyCritical
		}
		guidance := urgencyGuidanceTable[urgency]
		signals = append(signals, entities.EmergencySignal{
			Type:            combo.ID,
			Description:     combo.Description,
			SeverityScore:   clampScore(0.7 + combo.ScoreBonus),
			MatchedKeywords: matches,
			Urgency:         urgency,
			Recommendation:  guidance.recommendation,
		})
	}
	return signals
}

// resolveAgeBracket prefers the structured age over age-indicating phrases.
func (s *EmergencyDetectionService) resolveAgeBracket(text string, patient *entities.PatientContext) *ageBracket {
	if patient != nil && patient.Age != nil {
		for i := range s.ageBrackets {
			if s.ageBrackets[i].matches(*patient.Age) {
				return &s.ageBrackets[i]
			}
		}
		return nil
	}
	for i := range s.ageBrackets {
		if containsAny(text, s.ageBrackets[i].phrases) {
			return &s.ageBrackets[i]
		}
	}
	return nil
}

func applyAgeModifier(signals []entities.EmergencySignal, bracket *ageBracket, text string) {
	concern := containsAny(text, bracket.specialConcerns)
	for i := range signals {
		signals[i].SeverityScore = clampScore(signals[i].SeverityScore * bracket.multiplier)
		if concern && signals[i].Urgency < entities.UrgencyHigh {
			signals[i].Urgency = entities.UrgencyHigh
		}
	}
}

// aggregateScore is the mean signal severity plus a small bonus for multiple
// independent signals, clamped to [0,1].
func aggregateScore(signals []entities.EmergencySignal) float64 {
	sum := 0.0
	for _, signal := range signals {
		sum += signal.SeverityScore
	}
	mean := sum / float64(len(signals))

	bonus := 0.05 * float64(len(signals)-1)
	if bonus > 0.2 {
		bonus = 0.2
	}
	return clampScore(mean + bonus)
}

func maxUrgency(signals []entities.EmergencySignal) entities.UrgencyLevel {
	max := entities.UrgencyRoutine
	for _, signal := range signals {
		if signal.Urgency > max {
			max = signal.Urgency
		}
	}
	return max
}

// correctUrgency keeps score and urgency level consistent. It can only
// upgrade, never downgrade.
func correctUrgency(urgency entities.UrgencyLevel, score float64) entities.UrgencyLevel {
	switch {
	case score >= 0.9 && urgency < entities.UrgencyCritical:
		return entities.UrgencyCritical
	case score >= 0.7 && urgency < entities.UrgencyHigh:
		return entities.UrgencyHigh
	case score >= 0.5 && urgency < entities.UrgencyModerate:
		return entities.UrgencyModerate
	}
	return urgency
}

// primaryConcern picks the highest-severity signal, first-encountered on ties.
func primaryConcern(signals []entities.EmergencySignal) string {
	best := signals[0]
	for _, signal := range signals[1:] {
		if signal.SeverityScore > best.SeverityScore {
			best = signal
		}
	}
	return best.Description
}

// conservativeAssessment is the fail-closed default: not flagged, routine.
func conservativeAssessment() entities.EmergencyAssessment {
	guidance := urgencyGuidanceTable[entities.UrgencyRoutine]
	return entities.EmergencyAssessment{
		IsEmergency:     false,
		Urgency:         entities.UrgencyRoutine,
		OverallScore:    0.0,
		PrimaryConcern:  "",
		Recommendation:  guidance.recommendation,
		TimeSensitivity: guidance.timeSensitivity,
		ActionRequired:  guidance.actionRequired,
	}
}
