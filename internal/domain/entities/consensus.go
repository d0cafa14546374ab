package entities

// AgentResponse is one specialist's answer to a query. Immutable after
// creation; the aggregator only reads it.
type AgentResponse struct {
	Specialty       string   `json:"specialty"`
	Response        string   `json:"response"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations,omitempty"`
	Sources         []string `json:"sources,omitempty"`
}

// ConsensusMetrics are derived purely from the response map plus the original
// query. All scores live in [0,1]; they are recomputed on every call.
type ConsensusMetrics struct {
	AgreementScore          float64 `json:"agreement_score"`
	ConfidenceWeightedScore float64 `json:"confidence_weighted_score"`
	ComplementarityScore    float64 `json:"complementarity_score"`
	CoherenceScore          float64 `json:"coherence_score"`
	UrgencyConsensus        string  `json:"urgency_consensus,omitempty"`
}

// Conflict reports a pair of specialists whose responses contain opposing
// statements about the same concept.
type Conflict struct {
	SpecialtyA  string  `json:"specialty_a"`
	SpecialtyB  string  `json:"specialty_b"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// ConsensusResponse is the terminal output of one consultation turn.
type ConsensusResponse struct {
	PrimarySpecialty        string            `json:"primary_specialty"`
	PrimaryResponse         string            `json:"primary_response"`
	ContributingSpecialties []string          `json:"contributing_specialties"`
	AdditionalInsights      map[string]string `json:"additional_insights,omitempty"`
	PatientRecommendations  []string          `json:"patient_recommendations"`
	KeyThemes               []string          `json:"key_themes,omitempty"`
	Conflicts               []Conflict        `json:"conflicts,omitempty"`
	Metrics                 ConsensusMetrics  `json:"consensus_metrics"`
}
