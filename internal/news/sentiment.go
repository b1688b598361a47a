package news

import (
	"math"
	"strings"
)

// Sentiment is the scored sentiment of a piece of text. Score runs from -1
// (bearish) to 1 (bullish).
type Sentiment struct {
	Score      float64 `json:"score"`
	Label      string  `json:"label"` // positive, negative, neutral
	Confidence float64 `json:"confidence"`
}

// Analyzer scores text sentiment. Implementations must be safe for
// concurrent use.
type Analyzer interface {
	Analyze(text string) Sentiment
}

// Compile-time interface check.
var _ Analyzer = (*KeywordAnalyzer)(nil)

// KeywordAnalyzer scores sentiment by counting bullish and bearish keyword
// occurrences. It is the fallback heuristic for when no model-backed
// analyzer is configured.
type KeywordAnalyzer struct{}

var positiveKeywords = []string{
	"gain", "surge", "rally", "up", "high", "profit", "growth",
	"beat", "outperform", "bullish", "upgrade", "strong",
}

var negativeKeywords = []string{
	"loss", "drop", "fall", "down", "low", "miss", "decline",
	"weak", "underperform", "bearish", "downgrade", "cut",
}

// Analyze scores text as (positive hits − negative hits) / total hits.
// Matching is substring-based, so "upgrade" counts for both "up" and
// "upgrade", mirroring the intent of a crude keyword screen.
func (KeywordAnalyzer) Analyze(text string) Sentiment {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range positiveKeywords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeKeywords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return Sentiment{Score: 0, Label: "neutral", Confidence: 0.5}
	}

	score := float64(pos-neg) / float64(total)
	return Sentiment{
		Score:      score,
		Label:      sentimentLabel(score),
		Confidence: math.Min(math.Abs(score)+0.5, 1.0),
	}
}

func sentimentLabel(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}
