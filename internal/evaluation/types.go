package evaluation

import "time"

// GoldenCase represents a labeled triage query with expected outcomes.
type GoldenCase struct {
	ID                  string   `json:"id"`
	Query               string   `json:"query"`
	Age                 *int     `json:"age,omitempty"`
	ExpectedUrgency     string   `json:"expected_urgency"`
	ExpectEmergency     bool     `json:"expect_emergency"`
	ExpectedSpecialties []string `json:"expected_specialties"`
	Difficulty          string   `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single case.
type EvalResult struct {
	CaseID             string
	Query              string
	Difficulty         string
	UrgencyMatch       bool
	EmergencyMatch     bool
	SpecialtyRecallAt3 float64
	SpecialtyMRRAt3    float64
	RankedSpecialties  []string
	Latency            time.Duration
}

// EvalSummary holds aggregate metrics across all golden cases.
type EvalSummary struct {
	TotalCases         int
	UrgencyAccuracy    float64
	EmergencyAccuracy  float64
	AvgSpecialtyRecall float64
	AvgSpecialtyMRR    float64
	AvgLatency         time.Duration
	ByDifficulty       map[string]*DifficultySummary
}

// DifficultySummary holds metrics grouped by case difficulty.
type DifficultySummary struct {
	Count              int
	UrgencyAccuracy    float64
	AvgSpecialtyRecall float64
}
