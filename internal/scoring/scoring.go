package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/utils"
)

const (
	// NeutralScore is returned when the model text carries no number at all.
	NeutralScore = 50
	// MaxReasonLength bounds the reason in runes.
	MaxReasonLength = 250

	minReasonLength = 10
	noScoreReason   = "Could not determine a fit score from the analysis"
)

var (
	// The scale description "0-100" from the prompt would otherwise be read as a score.
	scalePhrase = regexp.MustCompile(`0\s*[-–]\s*100`)

	percentTier  = regexp.MustCompile(`(\d+)\s*%`)
	fractionTier = regexp.MustCompile(`(\d+)\s*/\s*100`)
	outOfTier    = regexp.MustCompile(`(?i)(\d+)\s*out of 100`)
	bareTier     = regexp.MustCompile(`(\d+)`)

	leadingScore = regexp.MustCompile(`(?i)^\s*(?:(?:fit\s+)?score\s*[:=]?\s*)?\d+\s*(?:%|/\s*100|out of 100)?\s*[-:.–]?\s*`)
)

// tier is one rule of the score grammar. Tiers are tried in order and the first match wins.
type tier struct {
	name     string
	patterns []*regexp.Regexp
}

var tiers = []tier{
	{name: "percent", patterns: []*regexp.Regexp{percentTier}},
	{name: "fraction", patterns: []*regexp.Regexp{fractionTier, outOfTier}},
	{name: "bare", patterns: []*regexp.Regexp{bareTier}},
}

// Answer normalizes a free-text model answer.
func Answer(raw string) string {
	return strings.TrimSpace(raw)
}

// ParseFit extracts a fit score and a short reason from model text. It never fails:
// text without any number yields NeutralScore.
func ParseFit(raw string) ai.FitResult {
	result := ai.FitResult{Raw: raw}

	score, ok := extractScore(raw)
	if !ok {
		result.Score = NeutralScore
		result.Reason = noScoreReason
		return result
	}

	result.Score = score
	result.Reason = extractReason(raw)

	return result
}

// Tier reports which rule of the grammar produced the score, or "none".
func Tier(raw string) string {
	cleaned := scalePhrase.ReplaceAllString(raw, "")
	for _, t := range tiers {
		for _, re := range t.patterns {
			if re.MatchString(cleaned) {
				return t.name
			}
		}
	}
	return "none"
}

func extractScore(raw string) (int, bool) {
	cleaned := scalePhrase.ReplaceAllString(raw, "")

	for _, t := range tiers {
		for _, re := range t.patterns {
			m := re.FindStringSubmatch(cleaned)
			if m == nil {
				continue
			}
			return clamp(m[1]), true
		}
	}

	return 0, false
}

func clamp(digits string) int {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return 0
	}
	if len(digits) > 3 {
		return 100
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return NeutralScore
	}

	return min(max(n, 0), 100)
}

func extractReason(raw string) string {
	reason := strings.TrimSpace(leadingScore.ReplaceAllString(raw, ""))
	if utf8.RuneCountInString(reason) < minReasonLength {
		reason = utils.Truncate(raw, MaxReasonLength)
	}

	return utils.Truncate(reason, MaxReasonLength)
}

// Band classifies a score for activity reporting.
func Band(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	default:
		return "uncertain"
	}
}
