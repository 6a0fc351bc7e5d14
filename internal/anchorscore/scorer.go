package anchorscore

import (
	"strings"
	"unicode"
)

// Score metric names. The analyzer forwards these keys verbatim into
// issue evidence.
const (
	MetricLength         = "length"
	MetricKeywordDensity = "keyword_density"
	MetricSpecificity    = "specificity"
	MetricOverall        = "overall"
)

// Overall score weights per metric.
const (
	weightLength         = 0.4
	weightKeywordDensity = 0.3
	weightSpecificity    = 0.3
)

// stopWords is a small built-in stop word list; enough to estimate keyword
// density without pulling in a language-processing stack.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true, "but": true, "or": true, "not": true,
	"this": true, "these": true, "those": true, "i": true, "you": true,
	"we": true, "they": true, "she": true, "me": true, "us": true,
	"them": true, "my": true, "your": true, "our": true, "their": true,
	"his": true, "her": true, "what": true, "which": true, "who": true,
	"when": true, "where": true, "why": true, "how": true,
}

// genericTerms are phrases that say nothing about the destination. They
// bottom out the specificity score.
var genericTerms = map[string]bool{
	"click here":    true,
	"read more":     true,
	"learn more":    true,
	"here":          true,
	"more":          true,
	"continue reading": true,
	"see more":      true,
	"view more":     true,
	"find out more": true,
	"download":      true,
	"buy now":       true,
	"shop now":      true,
	"contact us":    true,
	"about us":      true,
}

// Scorer rates anchor texts. It is stateless and safe for concurrent use.
type Scorer struct{}

// NewScorer creates an anchor text scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score rates one anchor text and returns the metric map: length,
// keyword_density, specificity and the weighted overall score.
func (s *Scorer) Score(anchorText string) map[string]float64 {
	scores := map[string]float64{
		MetricLength:         lengthScore(anchorText),
		MetricKeywordDensity: keywordDensityScore(anchorText),
		MetricSpecificity:    specificityScore(anchorText),
	}
	scores[MetricOverall] = scores[MetricLength]*weightLength +
		scores[MetricKeywordDensity]*weightKeywordDensity +
		scores[MetricSpecificity]*weightSpecificity
	return scores
}

// lengthScore rewards concise anchors. Up to 60 characters is ideal, up to
// 100 acceptable, and beyond that the score decays linearly.
func lengthScore(anchorText string) float64 {
	length := len([]rune(anchorText))
	switch {
	case length >= 1 && length <= 60:
		return 100
	case length <= 100:
		return 80
	default:
		score := 100 - float64(length-100)
		if score < 0 {
			return 0
		}
		return score
	}
}

// keywordDensityScore estimates how keyword-stuffed the anchor is: the
// share of non-stop-word tokens longer than two characters. Natural text
// stays below 30% and scores best.
func keywordDensityScore(anchorText string) float64 {
	words := tokenize(anchorText)
	if len(words) == 0 {
		return 0
	}

	keywords := 0
	for _, word := range words {
		if !stopWords[word] && len(word) > 2 {
			keywords++
		}
	}

	density := float64(keywords) / float64(len(words))
	switch {
	case density <= 0.3:
		return 100
	case density <= 0.5:
		return 80
	case density <= 0.7:
		return 50
	default:
		return 20
	}
}

// specificityScore bottoms out for well-known generic phrases.
func specificityScore(anchorText string) float64 {
	if genericTerms[strings.ToLower(strings.TrimSpace(anchorText))] {
		return 20
	}
	return 100
}

// tokenize lowercases, strips punctuation and splits on whitespace.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
	return strings.Fields(strings.ToLower(cleaned))
}
