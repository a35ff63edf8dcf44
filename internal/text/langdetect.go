package text

import (
	"sort"
	"strings"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// DefaultTopK is how many language candidates detection reports.
const DefaultTopK = 3

// DefaultMinConfidence is the score below which a candidate is dropped.
const DefaultMinConfidence = 0.05

// stopwords maps ISO 639-3 codes to high-frequency function words.
// Detection scores a language by the share of input words found in its
// profile, which is crude but dependency-free and works on a paragraph
// of running text.
var stopwords = map[string][]string{
	"eng": {"the", "and", "of", "to", "in", "is", "that", "it", "was", "for", "on", "with", "as", "are", "this", "at", "be", "have", "from", "not"},
	"deu": {"der", "die", "das", "und", "ist", "von", "mit", "den", "des", "ein", "eine", "auf", "für", "nicht", "im", "dem", "sich", "auch", "als", "werden"},
	"fra": {"le", "la", "les", "de", "des", "et", "est", "un", "une", "dans", "que", "pour", "qui", "sur", "pas", "avec", "par", "plus", "ce", "sont"},
	"spa": {"el", "la", "los", "las", "de", "que", "y", "en", "un", "una", "es", "por", "con", "para", "del", "se", "no", "su", "al", "como"},
	"ita": {"il", "la", "di", "che", "e", "un", "una", "per", "in", "del", "della", "con", "non", "sono", "da", "si", "al", "le", "come", "anche"},
	"por": {"o", "a", "os", "as", "de", "que", "e", "do", "da", "em", "um", "uma", "para", "com", "não", "por", "mais", "dos", "como", "se"},
	"nld": {"de", "het", "een", "van", "en", "is", "dat", "op", "te", "zijn", "voor", "met", "die", "niet", "aan", "er", "ook", "als", "bij", "maar"},
}

type languageScore struct {
	code  string
	score float64
}

// DetectLanguages guesses the languages of content, best match first.
// A nil cfg uses the defaults.
func DetectLanguages(content string, cfg *domain.LanguageDetectionConfig) []string {
	topK := DefaultTopK
	minConfidence := DefaultMinConfidence
	if cfg != nil {
		if cfg.TopK > 0 {
			topK = cfg.TopK
		}
		if cfg.MinConfidence > 0 {
			minConfidence = cfg.MinConfidence
		}
	}

	words := tokenise(content)
	if len(words) == 0 {
		return nil
	}

	var scores []languageScore
	for code, profile := range stopwords {
		set := make(map[string]struct{}, len(profile))
		for _, w := range profile {
			set[w] = struct{}{}
		}
		hits := 0
		for _, w := range words {
			if _, ok := set[w]; ok {
				hits++
			}
		}
		score := float64(hits) / float64(len(words))
		if score >= minConfidence {
			scores = append(scores, languageScore{code: code, score: score})
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].code < scores[j].code
	})

	if len(scores) > topK {
		scores = scores[:topK]
	}
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.code
	}
	return out
}

func tokenise(content string) []string {
	fields := strings.Fields(strings.ToLower(content))
	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]{}«»")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
