package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"memewatch/internal/domain/content"
	"memewatch/internal/domain/signal"
)

// minTrendingConfidence gates which ticker signals are trustworthy enough to
// appear in a trending list.
const minTrendingConfidence = 0.5

// RankContent orders analyses by composite trending score, best first, and
// truncates to limit. Equal scores keep their input order.
func RankContent(records []content.Analysis, limit int) []content.Analysis {
	ranked := make([]content.Analysis, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return contentScore(ranked[i]) > contentScore(ranked[j])
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// contentScore is the sum of viral potential and the engagement gauge.
func contentScore(a content.Analysis) float64 {
	return a.ViralityScore + a.Trends.PopularityMetrics["engagement_rate"]
}

// RankSignals orders ticker signals by composite momentum, best first, and
// truncates to limit. Equal scores keep their input order.
func RankSignals(signals []signal.TickerSignal, limit int) []signal.TickerSignal {
	ranked := make([]signal.TickerSignal, len(signals))
	copy(ranked, signals)

	sort.SliceStable(ranked, func(i, j int) bool {
		return signalScore(ranked[i]) > signalScore(ranked[j])
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// signalScore sums sentiment direction, virality, and the magnitude of the
// predicted price move in either direction.
func signalScore(s signal.TickerSignal) float64 {
	return s.SentimentScore + s.ViralityScore + math.Abs(s.PriceImpact)
}

// TrendingContent returns the top-limit analyses from the trailing window.
func (e *Engine) TrendingContent(ctx context.Context, window time.Duration, limit int) ([]content.Analysis, error) {
	records, err := e.store.QueryRecent(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("querying trending content: %w", err)
	}
	return RankContent(records, limit), nil
}

// TrendingTickers computes signals for every tracked symbol, drops the ones
// without enough data or enough confidence, and returns the top-limit ranked
// rest. One store query feeds all symbols.
func (e *Engine) TrendingTickers(ctx context.Context, window time.Duration, limit int) ([]signal.TickerSignal, error) {
	records, err := e.store.QueryRecent(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("querying trending tickers: %w", err)
	}

	var signals []signal.TickerSignal
	for _, symbol := range e.linker.Symbols() {
		sig, err := e.Compute(symbol, records, window)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				continue
			}
			return nil, err
		}
		if sig.Confidence <= minTrendingConfidence {
			continue
		}
		signals = append(signals, *sig)
	}

	return RankSignals(signals, limit), nil
}
