package scoring

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"memewatch/internal/domain/content"
)

// SentimentAnalyzer wraps a VADER polarity analyzer and normalizes its raw
// magnitudes into a positive/negative/neutral distribution summing to 1.
// Safe for concurrent use once constructed.
type SentimentAnalyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Scores analyzes text polarity. Empty or whitespace-only text yields the
// all-zero distribution rather than an error.
func (a *SentimentAnalyzer) Scores(text string) content.SentimentScores {
	if strings.TrimSpace(text) == "" {
		return content.SentimentScores{}
	}

	polarity := a.vader.PolarityScores(text)

	total := math.Abs(polarity.Positive) + math.Abs(polarity.Negative) + math.Abs(polarity.Neutral)
	if total == 0 {
		total = 1
	}

	return content.SentimentScores{
		Positive: math.Max(0, polarity.Positive/total),
		Negative: math.Max(0, polarity.Negative/total),
		Neutral:  math.Max(0, polarity.Neutral/total),
	}
}
