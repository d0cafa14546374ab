package entities

// UrgencyLevel is the ordinal severity classification attached to an
// emergency assessment. Higher values always mean more urgent.
type UrgencyLevel int

const (
	UrgencyRoutine UrgencyLevel = iota + 1
	UrgencyLow
	UrgencyModerate
	UrgencyHigh
	UrgencyCritical
)

// String returns the canonical name of the urgency level.
func (u UrgencyLevel) String() string {
	switch u {
	case UrgencyRoutine:
		return "ROUTINE"
	case UrgencyLow:
		return "LOW"
	case UrgencyModerate:
		return "MODERATE"
	case UrgencyHigh:
		return "HIGH"
	case UrgencyCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// IsValid checks that the level is one of the defined constants.
func (u UrgencyLevel) IsValid() bool {
	return u >= UrgencyRoutine && u <= UrgencyCritical
}

// PatternCategory groups pattern rules by severity tier.
type PatternCategory string

const (
	PatternCritical PatternCategory = "critical"
	PatternHigh     PatternCategory = "high"
	PatternModerate PatternCategory = "moderate"
	PatternWarning  PatternCategory = "warning"
)

// PatternRule is one immutable keyword rule loaded at startup. The keyword
// lists are bilingual (Spanish and English) because patient queries arrive in
// either language.
type PatternRule struct {
	ID             string
	Category       PatternCategory
	Keywords       []string
	BaseSeverity   float64
	Urgency        UrgencyLevel
	Description    string
	Recommendation string
}

// CombinationRule describes a named symptom cluster. When at least Threshold
// member phrases appear together the cluster is treated as stronger evidence
// than any single phrase alone.
type CombinationRule struct {
	ID           string
	Members      []string
	Threshold    int
	ScoreBonus   float64
	UrgencyBoost int // 0 -> MODERATE, 1 -> HIGH, 2 -> CRITICAL
	Description  string
}

// EmergencySignal is one independent piece of evidence contributing to an
// assessment. Signals live only for the duration of a single detection call.
type EmergencySignal struct {
	Type            string       `json:"type"`
	Description     string       `json:"description"`
	SeverityScore   float64      `json:"severity_score"`
	MatchedKeywords []string     `json:"matched_keywords"`
	Urgency         UrgencyLevel `json:"urgency_level"`
	Recommendation  string       `json:"recommendation"`
}

// EmergencyAssessment is the result of one detection call.
type EmergencyAssessment struct {
	IsEmergency     bool              `json:"is_emergency"`
	Urgency         UrgencyLevel      `json:"urgency_level"`
	OverallScore    float64           `json:"overall_score"`
	Signals         []EmergencySignal `json:"signals"`
	PrimaryConcern  string            `json:"primary_concern"`
	Recommendation  string            `json:"recommendation"`
	TimeSensitivity string            `json:"time_sensitivity"`
	ActionRequired  string            `json:"action_required"`
}

// PatientContext carries the structured context a caller may attach to a
// query. Age is a pointer so "not provided" is distinguishable from zero.
type PatientContext struct {
	Age *int `json:"age,omitempty"`
}
