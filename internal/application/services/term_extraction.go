package services

import (
	"regexp"
	"sort"
	"strings"
)

// Term extraction underlies the agreement, coherence and theme calculations.
// The vocabulary is a fixed bilingual (Spanish/English) regex set; it is
// intentionally small and curated rather than a full clinical ontology.
var medicalTermPatterns = []*regexp.Regexp{
	// symptoms
	regexp.MustCompile(`(?i)\b(dolor|pain|fiebre|fever|tos|cough|n[aá]usea[s]?|nausea|v[oó]mito[s]?|vomiting|mareo[s]?|dizziness|fatiga|fatigue|debilidad|weakness|inflamaci[oó]n|swelling|sangrado|bleeding|palpitaciones|palpitations|sudoraci[oó]n|sweating|picaz[oó]n|itching|erupci[oó]n|rash|diarrea|diarrhea|congesti[oó]n|congestion)\b`),
	// conditions
	regexp.MustCompile(`(?i)\b(diabetes|hipertensi[oó]n|hypertension|asma|asthma|infecci[oó]n|infection|migra[nñ]a|migraine|anemia|gastritis|artritis|arthritis|alergia[s]?|allerg(?:y|ies)|neumon[ií]a|pneumonia|ansiedad|anxiety|depresi[oó]n|depression|obesidad|obesity|gripe|influenza|covid)\b`),
	// treatments
	regexp.MustCompile(`(?i)\b(antibi[oó]tico[s]?|antibiotic[s]?|paracetamol|acetaminophen|ibuprofeno|ibuprofen|analg[eé]sico[s]?|painkiller[s]?|reposo|rest|hidrataci[oó]n|hydration|medicamento[s]?|medication[s]?|tratamiento[s]?|treatment[s]?|terapia|therapy|vacuna[s]?|vaccine[s]?|insulina|insulin|dieta|diet|ejercicio|exercise)\b`),
	// anatomy
	regexp.MustCompile(`(?i)\b(pecho|chest|coraz[oó]n|heart|cabeza|head|est[oó]mago|stomach|abdomen|garganta|throat|pulm[oó]n(?:es)?|lungs?|espalda|back|brazo[s]?|arms?|pierna[s]?|legs?|piel|skin|ri[nñ][oó]n(?:es)?|kidneys?|h[ií]gado|liver)\b`),
}

// ExtractMedicalTerms returns the set of vocabulary terms found in the text,
// lowercased. Deterministic for a given input.
func ExtractMedicalTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	if text == "" {
		return terms
	}
	for _, pattern := range medicalTermPatterns {
		for _, m := range pattern.FindAllString(text, -1) {
			terms[strings.ToLower(m)] = struct{}{}
		}
	}
	return terms
}

// JaccardSimilarity computes |A∩B| / |A∪B| over two term sets. Two empty sets
// are treated as identical.
func JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for term := range a {
		if _, ok := b[term]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

// wordSet splits a free-text string into its lowercase word set. Used by
// recommendation deduplication, which compares phrasing rather than the
// curated vocabulary.
func wordSet(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?¿¡()\"'")
		if w != "" {
			words[w] = struct{}{}
		}
	}
	return words
}

// Clinical aspect coverage, used by the complementarity score.
var aspectPatterns = map[string]*regexp.Regexp{
	"diagnosis":  regexp.MustCompile(`(?i)(diagn[oó]s\w+|diagnos\w+|causa[s]?\b|cause[sd]?\b|podr[ií]a (?:ser|tratarse)|could be|likely)`),
	"treatment":  regexp.MustCompile(`(?i)(trat[a-z]*miento|treat\w+|medicamento|medication|recet\w+|prescri\w+|tomar\b|take\b|terapia|therapy)`),
	"prevention": regexp.MustCompile(`(?i)(preven\w+|prevenci[oó]n|evit\w+|avoid\w*|h[aá]bito[s]?|habit[s]?|estilo de vida|lifestyle)`),
	"symptom":    regexp.MustCompile(`(?i)(s[ií]ntoma[s]?|symptom[s]?|signo[s]? de|signs? of|presenta\w*|experienc\w+)`),
	"prognosis":  regexp.MustCompile(`(?i)(pron[oó]stico|prognosis|recupera\w+|recover\w+|evoluci[oó]n|mejorar[aá]?|improve\w*)`),
	"emergency":  regexp.MustCompile(`(?i)(emergencia|emergency|urgencia[s]?|urgent\w*|inmediat\w+|immediate\w*|911|sala de urgencias|emergency room)`),
}

// extractAspects returns which clinical aspects a response touches.
func extractAspects(text string) []string {
	var aspects []string
	for aspect, pattern := range aspectPatterns {
		if pattern.MatchString(text) {
			aspects = append(aspects, aspect)
		}
	}
	sort.Strings(aspects)
	return aspects
}

// Urgency vocabulary per response, used for the urgency consensus vote.
var urgencyCategoryPatterns = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{"emergency", regexp.MustCompile(`(?i)(emergencia|emergency|911|inmediatamente|immediately|de inmediato|cuanto antes)`)},
	{"urgent", regexp.MustCompile(`(?i)(urgente|urgent|pronto|soon|en las pr[oó]ximas horas|within hours|no (?:debe|debes) esperar)`)},
	{"routine", regexp.MustCompile(`(?i)(rutina|routine|no es grave|not serious|leve\b|mild\b|puede esperar|can wait|consulta programada)`)},
}

// extractUrgencyCategory returns the first urgency category the text matches,
// checked from most to least severe, or "" when none match.
func extractUrgencyCategory(text string) string {
	for _, entry := range urgencyCategoryPatterns {
		if entry.pattern.MatchString(text) {
			return entry.category
		}
	}
	return ""
}

// Opposing-phrase adjacency, used by the coherence penalty. Each pattern
// captures a negation immediately followed by an affirmation of the same
// concept inside a single response.
var contradictionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)no (?:es|era) (?:grave|serio|serious).{0,60}(?:es|resulta) (?:grave|serio|serious)`),
	regexp.MustCompile(`(?i)no (?:necesita|requiere|needs?).{0,60}(?:necesita|requiere|needs?)`),
	regexp.MustCompile(`(?i)no (?:tome|debe tomar|take).{0,60}(?:tome|debe tomar|take)`),
	regexp.MustCompile(`(?i)\bnot? (?:urgent|urgente).{0,60}\b(?:urgent|urgente)`),
}

const contradictionPenalty = 0.15

// contradictionScore sums the fixed penalty for each matched pattern, capped at 1.
func contradictionScore(text string) float64 {
	penalty := 0.0
	for _, pattern := range contradictionPatterns {
		if pattern.MatchString(text) {
			penalty += contradictionPenalty
		}
	}
	if penalty > 1.0 {
		penalty = 1.0
	}
	return penalty
}

// opposingPair is a pair of stances that conflict when they appear in two
// different specialists' responses.
type opposingPair struct {
	concept string
	affirm  []string
	negate  []string
}

var opposingPairs = []opposingPair{
	{
		concept: "recommendation",
		affirm:  []string{"recomiendo", "se recomienda", "i recommend", "debería tomar", "should take"},
		negate:  []string{"no recomiendo", "no se recomienda", "not recommend", "no debería tomar", "should not take", "evite tomar", "avoid taking"},
	},
	{
		concept: "severity",
		affirm:  []string{"es normal", "is normal", "benigno", "benign", "no es grave", "not serious"},
		negate:  []string{"es anormal", "is abnormal", "es grave", "is serious", "preocupante", "concerning"},
	},
	{
		concept: "urgency",
		affirm:  []string{"atención inmediata", "immediate attention", "es urgente", "is urgent"},
		negate:  []string{"puede esperar", "can wait", "no es urgente", "not urgent", "sin prisa"},
	},
}

const opposingPairWeight = 0.2

// containsPhrase does a verbatim substring check only. Conflict detection
// must not use the token-decomposition fallback: "recomiendo ... no" would
// otherwise be read as "no recomiendo".
func containsPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// pairwiseConflictScore scans two responses for opposing stances. Each
// opposing pair found on opposite sides contributes a fixed weight, capped at 1.
func pairwiseConflictScore(textA, textB string) (float64, []string) {
	a := strings.ToLower(textA)
	b := strings.ToLower(textB)

	score := 0.0
	var concepts []string
	for _, pair := range opposingPairs {
		negateA := containsPhrase(a, pair.negate)
		negateB := containsPhrase(b, pair.negate)
		// The affirm phrases are substrings of their negated forms, so a
		// negated text must not also count as affirming.
		affirmA := containsPhrase(a, pair.affirm) && !negateA
		affirmB := containsPhrase(b, pair.affirm) && !negateB

		if (affirmA && negateB) || (negateA && affirmB) {
			score += opposingPairWeight
			concepts = append(concepts, pair.concept)
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, concepts
}
