// internal/server/handlers/content.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"memewatch/internal/domain/content"
	"memewatch/internal/service/pipeline"
)

// defaultWindow bounds trending queries that do not specify their own.
const defaultWindow = 24 * time.Hour

const defaultLimit = 10

// ContentReader is the slice of the pipeline the content handler needs.
type ContentReader interface {
	Lookup(ctx context.Context, fp content.Fingerprint) (*content.Analysis, error)
}

// ContentRanker is the slice of the aggregation engine the content handler
// needs.
type ContentRanker interface {
	TrendingContent(ctx context.Context, window time.Duration, limit int) ([]content.Analysis, error)
}

// ContentHandler handles analyzed-content HTTP requests
type ContentHandler struct {
	reader ContentReader
	ranker ContentRanker
}

// NewContentHandler creates a new content handler
func NewContentHandler(reader ContentReader, ranker ContentRanker) *ContentHandler {
	return &ContentHandler{
		reader: reader,
		ranker: ranker,
	}
}

// GetTrending returns the top analyzed items from the trailing window
func (h *ContentHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	window, limit := parseWindowAndLimit(r)

	analyses, err := h.ranker.TrendingContent(r.Context(), window, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get trending content", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"window_hours": window.Hours(),
		"count":        len(analyses),
		"items":        analyses,
	})
}

// GetByFingerprint returns one stored analysis
func (h *ContentHandler) GetByFingerprint(w http.ResponseWriter, r *http.Request) {
	fp := chi.URLParam(r, "fingerprint")
	if fp == "" {
		respondWithError(w, http.StatusBadRequest, "Missing fingerprint", nil)
		return
	}

	analysis, err := h.reader.Lookup(r.Context(), content.Fingerprint(fp))
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Analysis not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get analysis", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, analysis)
}

// parseWindowAndLimit reads the shared window_hours and limit query
// parameters, falling back to defaults on anything unparseable.
func parseWindowAndLimit(r *http.Request) (time.Duration, int) {
	window := defaultWindow
	if hoursStr := r.URL.Query().Get("window_hours"); hoursStr != "" {
		if hours, err := strconv.ParseFloat(hoursStr, 64); err == nil && hours > 0 {
			window = time.Duration(hours * float64(time.Hour))
		}
	}

	limit := defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	return window, limit
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
