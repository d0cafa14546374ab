package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/consilium-health/consilium/internal/domain/entities"
	"github.com/consilium-health/consilium/internal/domain/providers"
	"github.com/consilium-health/consilium/internal/domain/repositories"
)

const (
	maxSpecialistsPerQuery = 3
	routingBaseConfidence  = 0.5
	specialistTemperature  = 0.7
	historyContextTurns    = 6
)

// ConsultationResult is the full outcome of one consultation turn.
type ConsultationResult struct {
	ID                   string                       `json:"id"`
	SessionID            string                       `json:"session_id,omitempty"`
	Query                string                       `json:"query"`
	Emergency            entities.EmergencyAssessment `json:"emergency"`
	Consensus            *entities.ConsensusResponse  `json:"consensus"`
	SpecialtiesConsulted []string                     `json:"specialties_consulted"`
	CreatedAt            time.Time                    `json:"created_at"`
}

// ConsultationService orchestrates one query end to end: emergency triage,
// specialty routing, concurrent specialist consultation, consensus, and
// best-effort persistence. All collaborators are injected; repository and
// conversation store may be nil for a stateless deployment.
type ConsultationService struct {
	emergency  *EmergencyDetectionService
	confidence *SpecialtyConfidenceService
	consensus  *ConsensusService
	llm        providers.TextGenerationProvider

	repository    repositories.ConsultationRepository
	conversations providers.ConversationStore
}

// NewConsultationService wires the orchestrator.
func NewConsultationService(
	emergency *EmergencyDetectionService,
	confidence *SpecialtyConfidenceService,
	consensus *ConsensusService,
	llm providers.TextGenerationProvider,
	repository repositories.ConsultationRepository,
	conversations providers.ConversationStore,
) *ConsultationService {
	return &ConsultationService{
		emergency:     emergency,
		confidence:    confidence,
		consensus:     consensus,
		llm:           llm,
		repository:    repository,
		conversations: conversations,
	}
}

// Consult runs one consultation turn. The returned result is always
// well-formed; specialist failures shrink the panel rather than failing the
// turn, and a fully failed panel yields the safe fallback response.
func (s *ConsultationService) Consult(ctx context.Context, sessionID, query string, patient *entities.PatientContext) (*ConsultationResult, error) {
	assessment := s.emergency.Detect(query, patient)

	selected, primary := s.routeSpecialties(query, assessment)

	history := s.loadHistory(ctx, sessionID)
	responses := s.consultSpecialists(ctx, selected, query, history)

	// If the chosen primary's call failed, the first surviving specialist in
	// issue order takes over so selection stays deterministic.
	if _, ok := responses[primary]; !ok {
		for _, specialty := range selected {
			if _, survived := responses[specialty]; survived {
				primary = specialty
				break
			}
		}
	}

	consensus := s.consensus.BuildConsensus(ctx, responses, &assessment, primary, query)

	result := &ConsultationResult{
		ID:                   uuid.NewString(),
		SessionID:            sessionID,
		Query:                query,
		Emergency:            assessment,
		Consensus:            consensus,
		SpecialtiesConsulted: selected,
		CreatedAt:            time.Now().UTC(),
	}

	s.persist(ctx, result)
	return result, nil
}

// routeSpecialties scores every profile against the query and picks the top
// panel. An emergency always seats emergency medicine at the head of the
// table.
func (s *ConsultationService) routeSpecialties(query string, assessment entities.EmergencyAssessment) (selected []string, primary string) {
	type scored struct {
		name       string
		confidence float64
		order      int
	}

	var candidates []scored
	for i, profile := range s.confidence.Profiles() {
		adjusted := s.confidence.AdjustConfidence(routingBaseConfidence, query, profile.Name)
		candidates = append(candidates, scored{name: profile.Name, confidence: adjusted, order: i})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		return candidates[i].order < candidates[j].order
	})

	for _, candidate := range candidates {
		if len(selected) >= maxSpecialistsPerQuery {
			break
		}
		if candidate.confidence > routingBaseConfidence || candidate.name == SpecialtyGeneralMedicine {
			selected = append(selected, candidate.name)
		}
	}
	if len(selected) == 0 {
		selected = []string{SpecialtyGeneralMedicine}
	}

	if assessment.IsEmergency {
		if !contains(selected, SpecialtyEmergencyMedicine) {
			selected = append([]string{SpecialtyEmergencyMedicine}, selected...)
			if len(selected) > maxSpecialistsPerQuery {
				selected = selected[:maxSpecialistsPerQuery]
			}
		}
		return selected, SpecialtyEmergencyMedicine
	}
	return selected, selected[0]
}

// consultSpecialists fans out one LLM call per specialty and joins them,
// collecting results in issue order. A failed call drops that specialist from
// the panel; it never fails the query.
func (s *ConsultationService) consultSpecialists(ctx context.Context, specialties []string, query string, history []*entities.ConversationTurn) map[string]*entities.AgentResponse {
	results := make([]*entities.AgentResponse, len(specialties))

	var wg sync.WaitGroup
	for i, specialty := range specialties {
		profile, ok := s.confidence.Profile(specialty)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, profile SpecialtyProfile) {
			defer wg.Done()
			response, err := s.consultOne(ctx, profile, query, history)
			if err != nil {
				log.Warn().Err(err).Str("specialty", profile.Name).Msg("specialist consultation failed")
				return
			}
			results[i] = response
		}(i, profile)
	}
	wg.Wait()

	responses := make(map[string]*entities.AgentResponse, len(specialties))
	for _, response := range results {
		if response != nil {
			responses[response.Specialty] = response
		}
	}
	return responses
}

func (s *ConsultationService) consultOne(ctx context.Context, profile SpecialtyProfile, query string, history []*entities.ConversationTurn) (*entities.AgentResponse, error) {
	prompt := specialistPrompt(query, history)

	text, err := s.llm.Generate(ctx, profile.SystemPrompt, prompt, specialistTemperature)
	if err != nil {
		return nil, err
	}

	return &entities.AgentResponse{
		Specialty:       profile.Name,
		Response:        text,
		Confidence:      s.confidence.AdjustConfidence(routingBaseConfidence+0.2, query, profile.Name),
		Recommendations: parseRecommendations(text),
	}, nil
}

func specialistPrompt(query string, history []*entities.ConversationTurn) string {
	if len(history) == 0 {
		return query
	}
	var b strings.Builder
	b.WriteString("Contexto de la conversación previa:\n")
	for _, turn := range history {
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(excerpt(turn.Content, 200))
		b.WriteString("\n")
	}
	b.WriteString("\nConsulta actual: ")
	b.WriteString(query)
	return b.String()
}

var bulletLine = regexp.MustCompile(`^\s*(?:[-•*]|\d+[.)])\s+(.+)$`)

// parseRecommendations pulls bullet items out of a specialist's free-text
// answer. The personas are instructed to list recommendations as bullets, but
// an answer without any is valid.
func parseRecommendations(text string) []string {
	var recommendations []string
	for _, line := range strings.Split(text, "\n") {
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			recommendations = append(recommendations, strings.TrimSpace(m[1]))
		}
	}
	return recommendations
}

func (s *ConsultationService) loadHistory(ctx context.Context, sessionID string) []*entities.ConversationTurn {
	if s.conversations == nil || sessionID == "" {
		return nil
	}
	history, err := s.conversations.History(ctx, sessionID, historyContextTurns)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load conversation history")
		return nil
	}
	return history
}

// persist stores the record and appends the conversation turns, best effort.
func (s *ConsultationService) persist(ctx context.Context, result *ConsultationResult) {
	if s.repository != nil {
		record := &entities.Consultation{
			ID:               result.ID,
			SessionID:        result.SessionID,
			Query:            result.Query,
			PrimarySpecialty: result.Consensus.PrimarySpecialty,
			Urgency:          result.Emergency.Urgency.String(),
			EmergencyScore:   result.Emergency.OverallScore,
			Response:         result.Consensus.PrimaryResponse,
			CreatedAt:        result.CreatedAt,
		}
		if err := s.repository.Create(ctx, record); err != nil {
			log.Error().Err(err).Str("consultation_id", result.ID).Msg("failed to persist consultation")
		}
	}

	if s.conversations != nil && result.SessionID != "" {
		turns := []*entities.ConversationTurn{
			{Role: "user", Content: result.Query, Timestamp: result.CreatedAt},
			{
				Role:      "assistant",
				Content:   result.Consensus.PrimaryResponse,
				Specialty: result.Consensus.PrimarySpecialty,
				Timestamp: result.CreatedAt,
			},
		}
		for _, turn := range turns {
			if err := s.conversations.Append(ctx, result.SessionID, turn); err != nil {
				log.Warn().Err(err).Str("session_id", result.SessionID).Msg("failed to append conversation turn")
				break
			}
		}
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
