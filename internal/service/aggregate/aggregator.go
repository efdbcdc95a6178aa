// Package aggregate rolls many per-item analyses up into per-ticker market
// signals and trending rankings.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"memewatch/internal/domain/content"
	"memewatch/internal/domain/signal"
	"memewatch/internal/service/linker"
)

// ErrInsufficientData marks the expected outcome of analyzing a ticker with
// fewer than minSampleCount relevant records in the window. It is not a
// failure; callers render it as "not enough data", never as an error page.
var ErrInsufficientData = errors.New("insufficient data for ticker")

// minSampleCount is the smallest record set a signal may be derived from.
const minSampleCount = 3

// Platform weights for the sentiment roll-up. Platforms absent from a
// window contribute no weight rather than a zero value.
var platformWeights = map[content.Platform]float64{
	content.PlatformReddit:   0.4,
	content.PlatformTwitter:  0.3,
	content.PlatformTelegram: 0.3,
}

const unknownPlatformWeight = 0.1

// engagementKeys are the metric names summed into a per-record engagement
// total for trend-strength.
var engagementKeys = []string{"likes", "comments", "shares", "views", "forwards"}

// Store is the read side of the analysis store the engine aggregates over.
type Store interface {
	QueryRecent(ctx context.Context, window time.Duration) ([]content.Analysis, error)
}

// Engine computes ticker signals and trending rankings over stored analyses.
type Engine struct {
	store  Store
	linker *linker.Linker
	now    func() time.Time
}

func NewEngine(store Store, l *linker.Linker) *Engine {
	return &Engine{store: store, linker: l, now: time.Now}
}

// AnalyzeTicker recomputes the full signal for one symbol over the trailing
// window. Returns ErrInsufficientData when fewer than 3 relevant records
// fall inside the window.
func (e *Engine) AnalyzeTicker(ctx context.Context, symbol string, window time.Duration) (*signal.TickerSignal, error) {
	records, err := e.store.QueryRecent(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("querying analyses for %s: %w", symbol, err)
	}
	return e.Compute(symbol, records, window)
}

// Compute derives a signal from an explicit record set; exposed separately
// so callers holding a batch do not need a store round trip.
func (e *Engine) Compute(symbol string, records []content.Analysis, window time.Duration) (*signal.TickerSignal, error) {
	now := e.now()
	relevant := e.filterRelevant(symbol, records, window, now)
	if len(relevant) < minSampleCount {
		return nil, ErrInsufficientData
	}

	// Records are sorted oldest-first before the linear virality
	// weighting, so later (more recent) records carry more weight no
	// matter how the caller ordered the batch.
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Source.CreatedAt.Before(relevant[j].Source.CreatedAt)
	})

	sentiment := weightedSentiment(relevant)
	virality := weightedVirality(relevant)
	trend := trendStrength(relevant)

	return &signal.TickerSignal{
		Symbol:           symbol,
		SentimentScore:   sentiment,
		ViralityScore:    virality,
		TrendStrength:    trend,
		VolumePrediction: (sentiment*0.3 + virality*0.4 + trend*0.3) * 100,
		PriceImpact:      (sentiment*0.4 + virality*0.3 + trend*0.3) * 0.7 * 100,
		Confidence:       confidence(relevant),
		SupportingData:   supportingData(relevant),
		ComputedAt:       now.UTC(),
	}, nil
}

// filterRelevant keeps records inside [now-window, now] whose combined text
// contains at least one of the symbol's linked terms.
func (e *Engine) filterRelevant(symbol string, records []content.Analysis, window time.Duration, now time.Time) []content.Analysis {
	cutoff := now.Add(-window)
	terms := e.linker.Terms(symbol)

	var relevant []content.Analysis
	for _, rec := range records {
		created := rec.Source.CreatedAt
		if created.Before(cutoff) || created.After(now) {
			continue
		}

		text := rec.CombinedText()
		for _, term := range terms {
			if strings.Contains(text, term) {
				relevant = append(relevant, rec)
				break
			}
		}
	}
	return relevant
}

// weightedSentiment combines per-platform mean sentiment deltas using the
// fixed platform weights, normalized by the weight actually present.
func weightedSentiment(records []content.Analysis) float64 {
	sums := make(map[content.Platform]float64)
	counts := make(map[content.Platform]int)
	for _, rec := range records {
		sums[rec.Source.Platform] += rec.Sentiment.Delta()
		counts[rec.Source.Platform]++
	}

	weighted, totalWeight := 0.0, 0.0
	for platform, count := range counts {
		weight, ok := platformWeights[platform]
		if !ok {
			weight = unknownPlatformWeight
		}
		weighted += (sums[platform] / float64(count)) * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

// weightedVirality averages virality scores with weights rising linearly
// from 0.5 for the oldest record to 1.0 for the newest.
func weightedVirality(records []content.Analysis) float64 {
	n := len(records)
	if n == 0 {
		return 0
	}

	weightedSum, totalWeight := 0.0, 0.0
	for i, rec := range records {
		weight := 1.0
		if n > 1 {
			weight = 0.5 + 0.5*float64(i)/float64(n-1)
		}
		weightedSum += rec.ViralityScore * weight
		totalWeight += weight
	}
	return weightedSum / totalWeight
}

// trendStrength measures engagement dispersion within the sample: the spread
// between the quietest and loudest record, normalized by the quietest.
func trendStrength(records []content.Analysis) float64 {
	totals := make([]float64, 0, len(records))
	for _, rec := range records {
		total := 0.0
		for _, key := range engagementKeys {
			total += rec.Source.Metric(key)
		}
		totals = append(totals, total)
	}
	if len(totals) == 0 {
		return 0
	}

	sort.Float64s(totals)
	lo, hi := totals[0], totals[len(totals)-1]
	velocity := (hi - lo) / math.Max(lo, 1)
	return math.Min(1, math.Max(0, velocity))
}

// confidence scores how much to trust a signal: sample size plus sentiment
// and virality consistency.
func confidence(records []content.Analysis) float64 {
	deltas := make([]float64, 0, len(records))
	scores := make([]float64, 0, len(records))
	for _, rec := range records {
		deltas = append(deltas, rec.Sentiment.Delta())
		scores = append(scores, rec.ViralityScore)
	}

	dataConfidence := math.Min(float64(len(records))/10, 1.0)
	sentimentConfidence := 1.0 - math.Min(stdev(deltas), 1.0)
	viralityConfidence := 1.0 - math.Min(stdev(scores), 1.0)

	return dataConfidence*0.4 + sentimentConfidence*0.3 + viralityConfidence*0.3
}

// stdev is the population standard deviation; fewer than two samples count
// as perfectly consistent.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

func supportingData(records []content.Analysis) signal.SupportingData {
	data := signal.SupportingData{
		SampleCount:          len(records),
		PlatformDistribution: make(map[content.Platform]int),
	}

	var breakdown content.SentimentScores
	topicCounts := make(map[string]int)
	var topicOrder []string
	hashtagCounts := make(map[string]int)
	var hashtagOrder []string

	for _, rec := range records {
		data.PlatformDistribution[rec.Source.Platform]++
		breakdown.Positive += rec.Sentiment.Positive
		breakdown.Negative += rec.Sentiment.Negative
		breakdown.Neutral += rec.Sentiment.Neutral

		for _, topic := range rec.Trends.TrendingTopics {
			if _, seen := topicCounts[topic]; !seen {
				topicOrder = append(topicOrder, topic)
			}
			topicCounts[topic]++
		}
		for _, tag := range rec.Source.Hashtags {
			tag = strings.ToLower(tag)
			if _, seen := hashtagCounts[tag]; !seen {
				hashtagOrder = append(hashtagOrder, tag)
			}
			hashtagCounts[tag]++
		}
	}

	total := float64(len(records))
	if total == 0 {
		total = 1
	}
	breakdown.Positive /= total
	breakdown.Negative /= total
	breakdown.Neutral /= total
	data.SentimentBreakdown = breakdown

	data.ViralPosts = topViralPosts(records, 5)
	data.CommonTopics = topTerms(topicCounts, topicOrder, 5)
	data.CommonHashtags = topTerms(hashtagCounts, hashtagOrder, 5)
	return data
}

func topViralPosts(records []content.Analysis, limit int) []signal.ViralPost {
	sorted := make([]content.Analysis, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ViralityScore > sorted[j].ViralityScore
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	posts := make([]signal.ViralPost, 0, len(sorted))
	for _, rec := range sorted {
		posts = append(posts, signal.ViralPost{
			Platform:      rec.Source.Platform,
			Locator:       rec.Source.Locator,
			ViralityScore: rec.ViralityScore,
			Fingerprint:   rec.Fingerprint,
			CreatedAt:     rec.Source.CreatedAt,
		})
	}
	return posts
}

// topTerms ranks terms by count descending, ties broken by first occurrence.
func topTerms(counts map[string]int, order []string, limit int) []signal.TermCount {
	ranked := make([]signal.TermCount, 0, len(order))
	for _, term := range order {
		ranked = append(ranked, signal.TermCount{Term: term, Count: counts[term]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// WindowStats is a cross-ticker summary of a trailing window, used by the
// chat interface's vibe and observatory reports.
type WindowStats struct {
	SampleCount          int                      `json:"sample_count"`
	PlatformDistribution map[content.Platform]int `json:"platform_distribution"`
	SentimentBreakdown   content.SentimentScores  `json:"sentiment_breakdown"`
	MeanVirality         float64                  `json:"mean_virality"`
}

// Stats summarizes every stored analysis in the window, regardless of ticker
// relevance.
func (e *Engine) Stats(ctx context.Context, window time.Duration) (WindowStats, error) {
	records, err := e.store.QueryRecent(ctx, window)
	if err != nil {
		return WindowStats{}, fmt.Errorf("querying window stats: %w", err)
	}

	stats := WindowStats{
		SampleCount:          len(records),
		PlatformDistribution: make(map[content.Platform]int),
	}
	if len(records) == 0 {
		return stats, nil
	}

	for _, rec := range records {
		stats.PlatformDistribution[rec.Source.Platform]++
		stats.SentimentBreakdown.Positive += rec.Sentiment.Positive
		stats.SentimentBreakdown.Negative += rec.Sentiment.Negative
		stats.SentimentBreakdown.Neutral += rec.Sentiment.Neutral
		stats.MeanVirality += rec.ViralityScore
	}

	total := float64(len(records))
	stats.SentimentBreakdown.Positive /= total
	stats.SentimentBreakdown.Negative /= total
	stats.SentimentBreakdown.Neutral /= total
	stats.MeanVirality /= total
	return stats, nil
}
