// Package storage holds the Postgres-backed persistence adapters.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"memewatch/internal/domain/content"
	"memewatch/internal/service/pipeline"
)

// AnalysisStore implements storage for content analyses, keyed by
// fingerprint. It doubles as the dedup cache: a fingerprint present in the
// table means the item was already analyzed.
type AnalysisStore struct {
	db *pgxpool.Pool
}

// NewAnalysisStore creates a new analysis store
func NewAnalysisStore(db *pgxpool.Pool) *AnalysisStore {
	return &AnalysisStore{
		db: db,
	}
}

// Put saves an analysis. A conflicting fingerprint is overwritten: callers
// racing on the same item both win, and the later write sticks.
func (s *AnalysisStore) Put(ctx context.Context, a content.Analysis) error {
	query := `
		INSERT INTO analyses (
			fingerprint, platform, locator, analyzed_at, created_at,
			virality_score, sentiment, trends, source
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
		ON CONFLICT (fingerprint) DO UPDATE
		SET
			platform = $2,
			locator = $3,
			analyzed_at = $4,
			created_at = $5,
			virality_score = $6,
			sentiment = $7,
			trends = $8,
			source = $9
	`

	if a.AnalyzedAt.IsZero() {
		a.AnalyzedAt = time.Now().UTC()
	}

	sentimentJSON, err := json.Marshal(a.Sentiment)
	if err != nil {
		return fmt.Errorf("error marshaling sentiment: %w", err)
	}

	trendsJSON, err := json.Marshal(a.Trends)
	if err != nil {
		return fmt.Errorf("error marshaling trends: %w", err)
	}

	sourceJSON, err := json.Marshal(a.Source)
	if err != nil {
		return fmt.Errorf("error marshaling source: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		string(a.Fingerprint),
		string(a.Source.Platform),
		a.Source.Locator,
		a.AnalyzedAt,
		a.Source.CreatedAt,
		a.ViralityScore,
		sentimentJSON,
		trendsJSON,
		sourceJSON,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// Get retrieves an analysis by fingerprint. A missing row is reported as
// pipeline.ErrNotFound so callers can treat it as a cache miss.
func (s *AnalysisStore) Get(ctx context.Context, fp content.Fingerprint) (*content.Analysis, error) {
	query := `
		SELECT
			fingerprint, analyzed_at, virality_score, sentiment, trends, source
		FROM analyses
		WHERE fingerprint = $1
	`

	var a content.Analysis
	var sentimentJSON, trendsJSON, sourceJSON []byte

	err := s.db.QueryRow(ctx, query, string(fp)).Scan(
		&a.Fingerprint,
		&a.AnalyzedAt,
		&a.ViralityScore,
		&sentimentJSON,
		&trendsJSON,
		&sourceJSON,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pipeline.ErrNotFound
		}
		return nil, fmt.Errorf("error querying analysis: %w", err)
	}

	if err := json.Unmarshal(sentimentJSON, &a.Sentiment); err != nil {
		return nil, fmt.Errorf("error unmarshaling sentiment: %w", err)
	}

	if err := json.Unmarshal(trendsJSON, &a.Trends); err != nil {
		return nil, fmt.Errorf("error unmarshaling trends: %w", err)
	}

	if err := json.Unmarshal(sourceJSON, &a.Source); err != nil {
		return nil, fmt.Errorf("error unmarshaling source: %w", err)
	}

	return &a, nil
}

// QueryRecent returns every analysis whose source content was created within
// the trailing window, oldest first.
func (s *AnalysisStore) QueryRecent(ctx context.Context, window time.Duration) ([]content.Analysis, error) {
	query := `
		SELECT
			fingerprint, analyzed_at, virality_score, sentiment, trends, source
		FROM analyses
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, time.Now().UTC().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var analyses []content.Analysis
	for rows.Next() {
		var a content.Analysis
		var sentimentJSON, trendsJSON, sourceJSON []byte

		err := rows.Scan(
			&a.Fingerprint,
			&a.AnalyzedAt,
			&a.ViralityScore,
			&sentimentJSON,
			&trendsJSON,
			&sourceJSON,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning analysis: %w", err)
		}

		if err := json.Unmarshal(sentimentJSON, &a.Sentiment); err != nil {
			return nil, fmt.Errorf("error unmarshaling sentiment: %w", err)
		}

		if err := json.Unmarshal(trendsJSON, &a.Trends); err != nil {
			return nil, fmt.Errorf("error unmarshaling trends: %w", err)
		}

		if err := json.Unmarshal(sourceJSON, &a.Source); err != nil {
			return nil, fmt.Errorf("error unmarshaling source: %w", err)
		}

		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return analyses, nil
}
