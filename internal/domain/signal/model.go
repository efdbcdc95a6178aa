package signal

import (
	"time"

	"memewatch/internal/domain/content"
)

// TickerSignal is the aggregate market-impact estimate for one ticker over a
// trailing window. It is recomputed in full on every request and never
// stored; its inputs are persisted Analysis records.
type TickerSignal struct {
	Symbol           string         `json:"symbol"`
	SentimentScore   float64        `json:"sentiment_score"`   // -1..1
	ViralityScore    float64        `json:"virality_score"`    // 0..1
	TrendStrength    float64        `json:"trend_strength"`    // 0..1
	VolumePrediction float64        `json:"volume_prediction"` // percent
	PriceImpact      float64        `json:"price_impact"`      // percent
	Confidence       float64        `json:"confidence"`        // 0..1
	SupportingData   SupportingData `json:"supporting_data"`
	ComputedAt       time.Time      `json:"computed_at"`
}

// SupportingData is the evidence attached to a signal.
type SupportingData struct {
	SampleCount          int                      `json:"sample_count"`
	PlatformDistribution map[content.Platform]int `json:"platform_distribution"`
	SentimentBreakdown   content.SentimentScores  `json:"sentiment_breakdown"`
	ViralPosts           []ViralPost              `json:"viral_posts"`
	CommonTopics         []TermCount              `json:"common_topics"`
	CommonHashtags       []TermCount              `json:"common_hashtags"`
}

// ViralPost references one of the highest-virality items behind a signal.
type ViralPost struct {
	Platform      content.Platform    `json:"platform"`
	Locator       string              `json:"locator"`
	ViralityScore float64             `json:"virality_score"`
	Fingerprint   content.Fingerprint `json:"fingerprint"`
	CreatedAt     time.Time           `json:"created_at"`
}

// TermCount is a term with its occurrence count within the window.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
