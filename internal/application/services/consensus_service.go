package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/consilium-health/consilium/internal/domain/entities"
	"github.com/consilium-health/consilium/internal/domain/providers"
)

const (
	recommendationDuplicateThreshold = 0.7
	maxPatientRecommendations        = 8
	maxSimpleRecommendations         = 10
	maxThemes                        = 10
	conflictReportThreshold          = 0.3
	insightExcerptRunes              = 150
	synthesisTemperature             = 0.4
)

// fallbackMessage is what the patient sees when nothing else could be built.
const fallbackMessage = "No fue posible generar una respuesta completa. " +
	"Consulte a un profesional de la salud; si sus síntomas son urgentes, acuda a emergencias."

// ConsensusService merges the responses of several simulated specialists into
// one patient-facing answer. All metric computations are deterministic; only
// the narrative synthesis consults the text-generation collaborator, and that
// call is allowed to fail.
type ConsensusService struct {
	llm providers.TextGenerationProvider
}

// NewConsensusService creates a consensus service. A nil provider is valid:
// synthesis then always uses the deterministic fallback.
func NewConsensusService(llm providers.TextGenerationProvider) *ConsensusService {
	return &ConsensusService{llm: llm}
}

// BuildConsensus never fails. Internal errors degrade to the simplified
// consensus; a failing LLM collaborator only affects the narrative text.
func (s *ConsensusService) BuildConsensus(
	ctx context.Context,
	responses map[string]*entities.AgentResponse,
	emergency *entities.EmergencyAssessment,
	primarySpecialty string,
	query string,
) *entities.ConsensusResponse {
	result, err := s.buildConsensus(ctx, responses, emergency, primarySpecialty, query)
	if err != nil {
		return simpleConsensus(responses, emergency, primarySpecialty)
	}
	return result
}

func (s *ConsensusService) buildConsensus(
	ctx context.Context,
	responses map[string]*entities.AgentResponse,
	emergency *entities.EmergencyAssessment,
	primarySpecialty string,
	query string,
) (*entities.ConsensusResponse, error) {
	ordered := orderedSpecialties(responses, primarySpecialty)
	if len(ordered) == 0 {
		return simpleConsensus(responses, emergency, primarySpecialty), nil
	}
	primary := ordered[0]

	metrics := computeMetrics(responses, ordered, query)
	themes := extractThemes(responses, ordered)
	conflicts := detectConflicts(responses, ordered)
	recommendations := buildRecommendations(responses, ordered, emergency, metrics.AgreementScore)

	narrative := s.synthesize(ctx, responses, ordered, metrics, themes, query)

	insights := make(map[string]string)
	var contributing []string
	for _, specialty := range ordered[1:] {
		contributing = append(contributing, specialty)
		insights[specialty] = excerpt(responses[specialty].Response, insightExcerptRunes)
	}

	return &entities.ConsensusResponse{
		PrimarySpecialty:        primary,
		PrimaryResponse:         narrative,
		ContributingSpecialties: contributing,
		AdditionalInsights:      insights,
		PatientRecommendations:  recommendations,
		KeyThemes:               themes,
		Conflicts:               conflicts,
		Metrics:                 metrics,
	}, nil
}

// orderedSpecialties returns a deterministic ordering: the primary specialty
// first, then the rest alphabetically. Determinism here is what keeps
// consensus output independent of map iteration and LLM completion order.
func orderedSpecialties(responses map[string]*entities.AgentResponse, primarySpecialty string) []string {
	var rest []string
	hasPrimary := false
	for specialty, response := range responses {
		if response == nil {
			continue
		}
		if specialty == primarySpecialty {
			hasPrimary = true
			continue
		}
		rest = append(rest, specialty)
	}
	sort.Strings(rest)
	if hasPrimary {
		return append([]string{primarySpecialty}, rest...)
	}
	return rest
}

func computeMetrics(responses map[string]*entities.AgentResponse, ordered []string, query string) entities.ConsensusMetrics {
	// A single opinion trivially agrees with itself.
	if len(ordered) < 2 {
		urgency := ""
		if len(ordered) == 1 {
			urgency = extractUrgencyCategory(responses[ordered[0]].Response)
		}
		return entities.ConsensusMetrics{
			AgreementScore:          1.0,
			ConfidenceWeightedScore: 1.0,
			ComplementarityScore:    1.0,
			CoherenceScore:          1.0,
			UrgencyConsensus:        urgency,
		}
	}

	return entities.ConsensusMetrics{
		AgreementScore:          agreementScore(responses, ordered),
		ConfidenceWeightedScore: confidenceWeightedScore(responses, ordered),
		ComplementarityScore:    complementarityScore(responses, ordered),
		CoherenceScore:          coherenceScore(responses, ordered, query),
		UrgencyConsensus:        urgencyConsensus(responses, ordered),
	}
}

// agreementScore is the mean pairwise Jaccard similarity over extracted
// medical term sets.
func agreementScore(responses map[string]*entities.AgentResponse, ordered []string) float64 {
	termSets := make([]map[string]struct{}, len(ordered))
	for i, specialty := range ordered {
		termSets[i] = ExtractMedicalTerms(responses[specialty].Response)
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(termSets); i++ {
		for j := i + 1; j < len(termSets); j++ {
			sum += JaccardSimilarity(termSets[i], termSets[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 1.0
	}
	return clampScore(sum / float64(pairs))
}

// confidenceWeightedScore weights each confidence by response substance:
// longer answers, answers with recommendations and answers citing sources
// count more.
func confidenceWeightedScore(responses map[string]*entities.AgentResponse, ordered []string) float64 {
	weightedSum := 0.0
	weightSum := 0.0
	for _, specialty := range ordered {
		r := responses[specialty]
		weight := math.Min(1.0, float64(len(r.Response))/200.0)
		if len(r.Recommendations) > 0 {
			weight *= 1.2
		}
		if len(r.Sources) > 0 {
			weight *= 1.1
		}
		weightedSum += r.Confidence * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return 0.0
	}
	return clampScore(weightedSum / weightSum)
}

// complementarityScore measures how much distinct clinical aspect coverage
// the set of responses provides: each aspect occurrence is worth the inverse
// of how many responses cover it.
func complementarityScore(responses map[string]*entities.AgentResponse, ordered []string) float64 {
	occurrences := make(map[string]int)
	perResponse := make([][]string, len(ordered))
	for i, specialty := range ordered {
		aspects := extractAspects(responses[specialty].Response)
		perResponse[i] = aspects
		for _, aspect := range aspects {
			occurrences[aspect]++
		}
	}
	if len(occurrences) == 0 {
		return 0.0
	}

	uniqueness := 0.0
	for _, aspects := range perResponse {
		for _, aspect := range aspects {
			uniqueness += 1.0 / float64(occurrences[aspect])
		}
	}

	denominator := float64(len(occurrences) * len(ordered))
	return math.Min(1.0, uniqueness/denominator)
}

// coherenceScore is the mean per-response relevance to the query minus a
// penalty for self-contradicting phrasing.
func coherenceScore(responses map[string]*entities.AgentResponse, ordered []string, query string) float64 {
	queryTerms := ExtractMedicalTerms(query)

	sum := 0.0
	for _, specialty := range ordered {
		text := responses[specialty].Response

		relevance := 0.5
		if len(queryTerms) > 0 {
			responseTerms := ExtractMedicalTerms(text)
			shared := 0
			for term := range queryTerms {
				if _, ok := responseTerms[term]; ok {
					shared++
				}
			}
			relevance = float64(shared) / float64(len(queryTerms))
		}

		coherence := relevance - contradictionScore(text)
		if coherence < 0 {
			coherence = 0
		}
		sum += coherence
	}
	return clampScore(sum / float64(len(ordered)))
}

// urgencyConsensus is a plain vote over the urgency category each response
// expresses. Ties go to the more severe category.
func urgencyConsensus(responses map[string]*entities.AgentResponse, ordered []string) string {
	counts := make(map[string]int)
	for _, specialty := range ordered {
		if category := extractUrgencyCategory(responses[specialty].Response); category != "" {
			counts[category]++
		}
	}
	best := ""
	bestCount := 0
	for _, category := range []string{"emergency", "urgent", "routine"} {
		if counts[category] > bestCount {
			best = category
			bestCount = counts[category]
		}
	}
	return best
}

// extractThemes pools terms across responses and keeps those mentioned by at
// least half of the specialists, most frequent first.
func extractThemes(responses map[string]*entities.AgentResponse, ordered []string) []string {
	counts := make(map[string]int)
	for _, specialty := range ordered {
		for term := range ExtractMedicalTerms(responses[specialty].Response) {
			counts[term]++
		}
	}

	required := int(math.Ceil(float64(len(ordered)) / 2.0))
	var themes []string
	for term, count := range counts {
		if count >= required {
			themes = append(themes, term)
		}
	}
	sort.Slice(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return themes[i] < themes[j]
	})
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

// detectConflicts reports specialist pairs whose responses take opposing
// stances on the same concept.
func detectConflicts(responses map[string]*entities.AgentResponse, ordered []string) []entities.Conflict {
	var conflicts []entities.Conflict
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			score, concepts := pairwiseConflictScore(
				responses[ordered[i]].Response,
				responses[ordered[j]].Response,
			)
			if score > conflictReportThreshold {
				conflicts = append(conflicts, entities.Conflict{
					SpecialtyA:  ordered[i],
					SpecialtyB:  ordered[j],
					Score:       score,
					Description: "posturas opuestas sobre: " + strings.Join(concepts, ", "),
				})
			}
		}
	}
	return conflicts
}

type scoredRecommendation struct {
	text       string
	specialty  string
	confidence float64
}

// buildRecommendations flattens, deduplicates and ranks the specialists'
// recommendations, prefixing each survivor with its confidence tier.
func buildRecommendations(
	responses map[string]*entities.AgentResponse,
	ordered []string,
	emergency *entities.EmergencyAssessment,
	agreement float64,
) []string {
	var flattened []scoredRecommendation
	for _, specialty := range ordered {
		r := responses[specialty]
		for _, rec := range r.Recommendations {
			rec = strings.TrimSpace(rec)
			if rec == "" {
				continue
			}
			flattened = append(flattened, scoredRecommendation{
				text:       rec,
				specialty:  specialty,
				confidence: r.Confidence,
			})
		}
	}

	deduped := dedupeRecommendations(flattened)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].confidence > deduped[j].confidence
	})
	if len(deduped) > maxPatientRecommendations {
		deduped = deduped[:maxPatientRecommendations]
	}

	var result []string
	if emergency != nil && emergency.IsEmergency {
		result = append(result, "⚠️ "+emergency.Recommendation)
	}
	for _, rec := range deduped {
		result = append(result, confidenceGlyph(rec.confidence)+" "+rec.text)
	}

	switch {
	case agreement > 0.8:
		result = append(result, "✓ Los especialistas coinciden en su evaluación")
	case agreement < 0.5:
		result = append(result, "Las opiniones difieren; se sugiere una consulta adicional")
	}
	return result
}

// dedupeRecommendations treats two recommendations as duplicates when their
// word sets overlap more than the threshold, keeping the higher-confidence
// phrasing.
func dedupeRecommendations(recommendations []scoredRecommendation) []scoredRecommendation {
	var survivors []scoredRecommendation
	for _, candidate := range recommendations {
		candidateWords := wordSet(candidate.text)
		duplicateOf := -1
		for i, kept := range survivors {
			if JaccardSimilarity(candidateWords, wordSet(kept.text)) > recommendationDuplicateThreshold {
				duplicateOf = i
				break
			}
		}
		if duplicateOf == -1 {
			survivors = append(survivors, candidate)
		} else if candidate.confidence > survivors[duplicateOf].confidence {
			survivors[duplicateOf] = candidate
		}
	}
	return survivors
}

func confidenceGlyph(confidence float64) string {
	switch {
	case confidence > 0.8:
		return "🟢"
	case confidence > 0.6:
		return "🟡"
	default:
		return "⚪"
	}
}

// synthesize asks the LLM collaborator for the narrative answer and falls
// back to a deterministic concatenation when the call fails.
func (s *ConsensusService) synthesize(
	ctx context.Context,
	responses map[string]*entities.AgentResponse,
	ordered []string,
	metrics entities.ConsensusMetrics,
	themes []string,
	query string,
) string {
	if s.llm != nil {
		prompt := synthesisPrompt(responses, ordered, metrics, themes, query)
		narrative, err := s.llm.Generate(ctx, synthesisSystemPrompt, prompt, synthesisTemperature)
		if err == nil && strings.TrimSpace(narrative) != "" {
			return narrative
		}
	}
	return fallbackSynthesis(responses, ordered, themes)
}

const synthesisSystemPrompt = "Eres el coordinador de una junta médica virtual. " +
	"Integra las opiniones de los especialistas en una sola respuesta clara para el paciente, " +
	"en su idioma, sin inventar información que los especialistas no hayan dado."

func synthesisPrompt(
	responses map[string]*entities.AgentResponse,
	ordered []string,
	metrics entities.ConsensusMetrics,
	themes []string,
	query string,
) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Consulta del paciente: %s\n\n", query)
	fmt.Fprintf(&b, "Nivel de acuerdo entre especialistas: %.2f (coherencia %.2f)\n", metrics.AgreementScore, metrics.CoherenceScore)
	if len(themes) > 0 {
		fmt.Fprintf(&b, "Temas recurrentes: %s\n", strings.Join(themes, ", "))
	}
	b.WriteString("\nOpiniones:\n")
	for _, specialty := range ordered {
		fmt.Fprintf(&b, "[%s] %s\n\n", specialty, excerpt(responses[specialty].Response, 600))
	}
	b.WriteString("Redacta la respuesta integrada para el paciente.")
	return b.String()
}

// fallbackSynthesis is the deterministic narrative used when the LLM is
// unavailable: the primary answer in full, the rest as excerpts.
func fallbackSynthesis(responses map[string]*entities.AgentResponse, ordered []string, themes []string) string {
	if len(ordered) == 0 {
		return fallbackMessage
	}

	var b strings.Builder
	b.WriteString(responses[ordered[0]].Response)

	if len(ordered) > 1 {
		b.WriteString("\n\nAportes de otros especialistas:\n")
		for _, specialty := range ordered[1:] {
			fmt.Fprintf(&b, "• [%s] %s\n", specialty, excerpt(responses[specialty].Response, insightExcerptRunes))
		}
	}
	if len(themes) > 0 {
		fmt.Fprintf(&b, "\nTemas clave: %s", strings.Join(themes, ", "))
	}
	return b.String()
}

// simpleConsensus is the last-resort output: the primary specialist's raw
// response plus a flat recommendation list, no computed metrics.
func simpleConsensus(
	responses map[string]*entities.AgentResponse,
	emergency *entities.EmergencyAssessment,
	primarySpecialty string,
) *entities.ConsensusResponse {
	primaryText := fallbackMessage
	if r, ok := responses[primarySpecialty]; ok && r != nil && strings.TrimSpace(r.Response) != "" {
		primaryText = r.Response
	}

	var recommendations []string
	if emergency != nil && emergency.IsEmergency {
		recommendations = append(recommendations, "⚠️ "+emergency.Recommendation)
	}
	for _, specialty := range orderedSpecialties(responses, primarySpecialty) {
		for _, rec := range responses[specialty].Recommendations {
			if len(recommendations) >= maxSimpleRecommendations {
				break
			}
			recommendations = append(recommendations, rec)
		}
	}

	return &entities.ConsensusResponse{
		PrimarySpecialty:       primarySpecialty,
		PrimaryResponse:        primaryText,
		PatientRecommendations: recommendations,
	}
}

// excerpt truncates text to at most n runes, appending an ellipsis when cut.
func excerpt(text string, n int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
