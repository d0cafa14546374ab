package services

import (
	"sort"
	"strings"
)

// Confidence bounds shared by every specialty: a specialist never reports
// zero confidence and never exceeds certainty.
const (
	minConfidence = 0.1
	maxConfidence = 1.0
)

// SpecialtyConfidenceService nudges a base confidence score by the keyword
// density of the query for a given specialty. Pure function of its inputs;
// the per-specialty weights and caps are tunable constants, not clinically
// derived values.
type SpecialtyConfidenceService struct {
	profiles map[string]SpecialtyProfile
}

// NewSpecialtyConfidenceService builds the service from a profile list.
// Passing nil uses the default roster.
func NewSpecialtyConfidenceService(profiles []SpecialtyProfile) *SpecialtyConfidenceService {
	if profiles == nil {
		profiles = defaultSpecialtyProfiles()
	}
	byName := make(map[string]SpecialtyProfile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}
	return &SpecialtyConfidenceService{profiles: byName}
}

// Profiles returns the configured roster in its declaration order.
func (s *SpecialtyConfidenceService) Profiles() []SpecialtyProfile {
	// map order is not stable; rebuild from the canonical default order so
	// fan-out issue order is deterministic.
	ordered := make([]SpecialtyProfile, 0, len(s.profiles))
	for _, p := range defaultSpecialtyProfiles() {
		if configured, ok := s.profiles[p.Name]; ok {
			ordered = append(ordered, configured)
		}
	}
	// any custom profiles outside the default roster go last, by name
	if len(ordered) < len(s.profiles) {
		seen := make(map[string]struct{}, len(ordered))
		for _, p := range ordered {
			seen[p.Name] = struct{}{}
		}
		var extra []string
		for name := range s.profiles {
			if _, ok := seen[name]; !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			ordered = append(ordered, s.profiles[name])
		}
	}
	return ordered
}

// Profile looks up one specialty's configuration.
func (s *SpecialtyConfidenceService) Profile(specialty string) (SpecialtyProfile, bool) {
	p, ok := s.profiles[specialty]
	return p, ok
}

// AdjustConfidence boosts the base confidence by matched keyword density for
// the specialty and clamps the result to [0.1, 1.0]. Monotonic non-decreasing
// in the number of matched keywords. Unknown specialties get no boost.
func (s *SpecialtyConfidenceService) AdjustConfidence(base float64, query, specialty string) float64 {
	profile, ok := s.profiles[specialty]
	if !ok {
		return clampConfidence(base)
	}

	lower := strings.ToLower(query)

	boost := float64(countMatches(lower, profile.Keywords)) * profile.PerKeywordWeight
	boost += float64(countMatches(lower, profile.ConditionTerms)) * profile.ConditionWeight
	boost += float64(countMatches(lower, profile.SymptomTerms)) * profile.SymptomWeight

	if boost > profile.BoostCap {
		boost = profile.BoostCap
	}

	return clampConfidence(base + boost)
}

func countMatches(query string, keywords []string) int {
	count := 0
	for _, k := range keywords {
		if k != "" && strings.Contains(query, strings.ToLower(k)) {
			count++
		}
	}
	return count
}

func clampConfidence(confidence float64) float64 {
	if confidence < minConfidence {
		return minConfidence
	}
	if confidence > maxConfidence {
		return maxConfidence
	}
	return confidence
}
