package content

import (
	"strings"
	"time"
)

// Platform identifies where a piece of content originated.
type Platform string

const (
	PlatformReddit   Platform = "reddit"
	PlatformTwitter  Platform = "twitter"
	PlatformTelegram Platform = "telegram"
	PlatformUnknown  Platform = "unknown"
)

// ContentItem is the canonical representation of one scraped post. The
// normalizer produces these from platform-native records; nothing downstream
// ever sees a platform-specific shape again.
type ContentItem struct {
	Platform  Platform           `json:"source_platform"`
	Locator   string             `json:"source_locator"`
	Text      string             `json:"text"`
	Caption   string             `json:"caption,omitempty"`
	Hashtags  []string           `json:"hashtags,omitempty"`
	ImageRef  string             `json:"image_ref,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
	CreatedAt time.Time          `json:"created_at"`

	// ImageData is never fingerprinted or persisted.
	ImageData []byte `json:"-"`
}

// Metric returns a named engagement metric, or 0 when the platform did not
// supply it. Missing metrics are never an error.
func (c ContentItem) Metric(name string) float64 {
	if c.Metrics == nil {
		return 0
	}
	return c.Metrics[name]
}

// SentimentScores is a normalized polarity distribution. For non-empty text
// the three components sum to 1; for empty text all are 0.
type SentimentScores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Delta is the positive-minus-negative polarity used by the aggregation
// engine, in [-1, 1].
func (s SentimentScores) Delta() float64 {
	return s.Positive - s.Negative
}

// TrendIndicators carries lexical trend signals extracted from an item's text.
type TrendIndicators struct {
	TrendingTopics    []string           `json:"trending_topics"`
	CryptoRelevance   float64            `json:"crypto_relevance"`
	MemeRelevance     float64            `json:"meme_relevance"`
	PopularityMetrics map[string]float64 `json:"popularity_metrics"`
}

// Analysis is the persisted result of scoring one ContentItem. It is created
// once per unique fingerprint and immutable afterwards.
type Analysis struct {
	Fingerprint   Fingerprint     `json:"fingerprint"`
	AnalyzedAt    time.Time       `json:"analyzed_at"`
	ViralityScore float64         `json:"virality_score"`
	Sentiment     SentimentScores `json:"sentiment"`
	Trends        TrendIndicators `json:"trend_indicators"`
	Source        ContentItem     `json:"source_content"`
}

// CombinedText is the lowercased text an analysis is matched against when
// linking it to a ticker: original text, caption and extracted topics.
func (a Analysis) CombinedText() string {
	parts := []string{a.Source.Text, a.Source.Caption}
	parts = append(parts, a.Trends.TrendingTopics...)
	return strings.ToLower(strings.Join(parts, " "))
}
