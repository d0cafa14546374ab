package services

import "strings"

// FindMatches returns the subset of keywords present in text, case-insensitive.
// A multi-word keyword matches if it appears verbatim as a substring, or if
// every one of its space-separated tokens appears somewhere in the text. The
// token fallback tolerates Spanish conjugation and word reordering ("me duele
// el pecho" still matches "dolor pecho" token by token when phrased loosely).
// No stemming, no fuzzy matching.
func FindMatches(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var matched []string

	for _, keyword := range keywords {
		k := strings.ToLower(strings.TrimSpace(keyword))
		if k == "" {
			continue
		}

		if strings.Contains(lower, k) {
			matched = append(matched, keyword)
			continue
		}

		tokens := strings.Fields(k)
		if len(tokens) < 2 {
			continue
		}
		allPresent := true
		for _, token := range tokens {
			if !strings.Contains(lower, token) {
				allPresent = false
				break
			}
		}
		if allPresent {
			matched = append(matched, keyword)
		}
	}

	return matched
}

// containsAny reports whether any keyword matches the text.
func containsAny(text string, keywords []string) bool {
	return len(FindMatches(text, keywords)) > 0
}

// clampScore bounds a probability-like score to [0,1].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
