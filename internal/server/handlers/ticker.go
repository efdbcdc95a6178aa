// internal/server/handlers/ticker.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"memewatch/internal/domain/signal"
	"memewatch/internal/service/aggregate"
)

// SignalEngine is the slice of the aggregation engine the ticker handler
// needs.
type SignalEngine interface {
	AnalyzeTicker(ctx context.Context, symbol string, window time.Duration) (*signal.TickerSignal, error)
	TrendingTickers(ctx context.Context, window time.Duration, limit int) ([]signal.TickerSignal, error)
}

// InsightGenerator adds model commentary to a signal. Optional.
type InsightGenerator interface {
	Commentary(ctx context.Context, sig signal.TickerSignal) string
}

// TickerHandler handles ticker-signal HTTP requests
type TickerHandler struct {
	engine  SignalEngine
	insight InsightGenerator
}

// NewTickerHandler creates a new ticker handler. insight may be nil.
func NewTickerHandler(engine SignalEngine, insight InsightGenerator) *TickerHandler {
	return &TickerHandler{
		engine:  engine,
		insight: insight,
	}
}

// GetTrending returns the ranked high-confidence ticker signals for the
// trailing window
func (h *TickerHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	window, limit := parseWindowAndLimit(r)

	signals, err := h.engine.TrendingTickers(r.Context(), window, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get trending tickers", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"window_hours": window.Hours(),
		"count":        len(signals),
		"signals":      signals,
	})
}

// GetTicker returns the current signal for one symbol. Too little data is a
// normal outcome and comes back as 200 with an explicit marker, not an error
// status.
func (h *TickerHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if symbol == "" {
		respondWithError(w, http.StatusBadRequest, "Missing ticker symbol", nil)
		return
	}

	window, _ := parseWindowAndLimit(r)

	sig, err := h.engine.AnalyzeTicker(r.Context(), symbol, window)
	if err != nil {
		if errors.Is(err, aggregate.ErrInsufficientData) {
			respondWithJSON(w, http.StatusOK, map[string]interface{}{
				"symbol":            symbol,
				"insufficient_data": true,
				"window_hours":      window.Hours(),
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to analyze ticker", err)
		return
	}

	payload := map[string]interface{}{
		"signal": sig,
	}
	if h.insight != nil && r.URL.Query().Get("insight") == "true" {
		payload["commentary"] = h.insight.Commentary(r.Context(), *sig)
	}

	respondWithJSON(w, http.StatusOK, payload)
}
