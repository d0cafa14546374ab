package evaluation

import (
	"sort"
	"time"

	"github.com/consilium-health/consilium/internal/application/services"
	"github.com/consilium-health/consilium/internal/domain/entities"
)

const (
	recallRank            = 3
	routingBaseConfidence = 0.5
)

// Runner evaluates the deterministic triage and routing layers over a set of
// golden cases. The LLM never runs here; only detection and routing quality
// are measured.
type Runner struct {
	detector   *services.EmergencyDetectionService
	confidence *services.SpecialtyConfidenceService
	guardrails *PanelGuardrails
}

func NewRunner(
	detector *services.EmergencyDetectionService,
	confidence *services.SpecialtyConfidenceService,
	guardrails *PanelGuardrails,
) *Runner {
	if guardrails == nil {
		guardrails = NewPanelGuardrails(PanelGuardrails{MinConfidence: routingBaseConfidence})
	}
	return &Runner{detector: detector, confidence: confidence, guardrails: guardrails}
}

func (r *Runner) Run(cases []GoldenCase) *EvalSummary {
	summary := &EvalSummary{
		TotalCases:   len(cases),
		ByDifficulty: make(map[string]*DifficultySummary),
	}

	for _, gc := range cases {
		start := time.Now()

		var patient *entities.PatientContext
		if gc.Age != nil {
			patient = &entities.PatientContext{Age: gc.Age}
		}
		assessment := r.detector.Detect(gc.Query, patient)
		ranked := r.rankSpecialties(gc.Query)

		result := EvalResult{
			CaseID:             gc.ID,
			Query:              gc.Query,
			Difficulty:         gc.Difficulty,
			UrgencyMatch:       assessment.Urgency.String() == gc.ExpectedUrgency,
			EmergencyMatch:     assessment.IsEmergency == gc.ExpectEmergency,
			SpecialtyRecallAt3: RecallAtK(gc.ExpectedSpecialties, ranked, recallRank),
			SpecialtyMRRAt3:    MRRAtK(gc.ExpectedSpecialties, ranked, recallRank),
			RankedSpecialties:  ranked,
			Latency:            time.Since(start),
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary
}

// rankSpecialties scores every profile against the query and returns the
// seated panel, best first.
func (r *Runner) rankSpecialties(query string) []string {
	type scored struct {
		name       string
		confidence float64
		order      int
	}

	var candidates []scored
	for i, profile := range r.confidence.Profiles() {
		adjusted := r.confidence.AdjustConfidence(routingBaseConfidence, query, profile.Name)
		candidates = append(candidates, scored{name: profile.Name, confidence: adjusted, order: i})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		return candidates[i].order < candidates[j].order
	})

	var panel []string
	for _, candidate := range candidates {
		if r.guardrails.ShouldSeat(candidate.confidence) {
			panel = append(panel, candidate.name)
		}
	}
	if len(panel) == 0 {
		panel = []string{services.SpecialtyGeneralMedicine}
	}
	return r.guardrails.LimitPanel(panel)
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	if res.UrgencyMatch {
		s.UrgencyAccuracy++
	}
	if res.EmergencyMatch {
		s.EmergencyAccuracy++
	}
	s.AvgSpecialtyRecall += res.SpecialtyRecallAt3
	s.AvgSpecialtyMRR += res.SpecialtyMRRAt3
	s.AvgLatency += res.Latency

	if _, ok := s.ByDifficulty[res.Difficulty]; !ok {
		s.ByDifficulty[res.Difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[res.Difficulty]
	ds.Count++
	if res.UrgencyMatch {
		ds.UrgencyAccuracy++
	}
	ds.AvgSpecialtyRecall += res.SpecialtyRecallAt3
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalCases > 0 {
		n := float64(s.TotalCases)
		s.UrgencyAccuracy /= n
		s.EmergencyAccuracy /= n
		s.AvgSpecialtyRecall /= n
		s.AvgSpecialtyMRR /= n
		s.AvgLatency /= time.Duration(s.TotalCases)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.UrgencyAccuracy /= n
			ds.AvgSpecialtyRecall /= n
		}
	}
}
