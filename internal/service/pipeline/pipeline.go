package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"memewatch/internal/domain/content"
	"memewatch/internal/service/scoring"
)

// ErrNotFound is returned by a Store when no analysis exists for a
// fingerprint.
var ErrNotFound = errors.New("analysis not found")

// Store persists analyses keyed by content fingerprint.
type Store interface {
	Get(ctx context.Context, fp content.Fingerprint) (*content.Analysis, error)
	Put(ctx context.Context, a content.Analysis) error
	QueryRecent(ctx context.Context, window time.Duration) ([]content.Analysis, error)
}

// PlatformScraper fetches trending raw records for one platform.
type PlatformScraper interface {
	Platform() content.Platform
	FetchTrending(ctx context.Context, limit int) ([]RawRecord, error)
}

// EngagementRefresher is implemented by scrapers that can re-fetch the
// engagement metrics of one already-seen post by its platform-native id.
type EngagementRefresher interface {
	FetchEngagement(ctx context.Context, postID string) (map[string]float64, error)
}

// Config tunes the collection loop.
type Config struct {
	FetchLimit    int
	FetchInterval time.Duration
	RefreshWindow time.Duration
	EventsTopic   string
}

// Service runs the analysis pipeline: normalize, dedup, score, persist,
// publish. The scoring itself is pure synchronous computation; suspension
// happens only inside the scrapers and the store.
type Service struct {
	store      Store
	sentiment  *scoring.SentimentAnalyzer
	scrapers   []PlatformScraper
	refreshers map[content.Platform]EngagementRefresher
	events     *nats.Conn
	cfg        Config
	now        func() time.Time
}

func NewService(store Store, sentiment *scoring.SentimentAnalyzer, scrapers []PlatformScraper, events *nats.Conn, cfg Config) *Service {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 20
	}
	if cfg.RefreshWindow <= 0 {
		cfg.RefreshWindow = 6 * time.Hour
	}
	if cfg.EventsTopic == "" {
		cfg.EventsTopic = "meme.analysis"
	}

	refreshers := make(map[content.Platform]EngagementRefresher)
	for _, sc := range scrapers {
		if r, ok := sc.(EngagementRefresher); ok {
			refreshers[sc.Platform()] = r
		}
	}

	return &Service{
		store:      store,
		sentiment:  sentiment,
		scrapers:   scrapers,
		refreshers: refreshers,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Analyze scores one item, deduplicating by fingerprint: a cache hit returns
// the stored analysis verbatim without recomputation. Virality and
// sentiment/trend extraction run concurrently. The persisted copy never
// carries image bytes.
func (s *Service) Analyze(ctx context.Context, item content.ContentItem) (content.Analysis, error) {
	fp := item.ComputeFingerprint()

	cached, err := s.store.Get(ctx, fp)
	if err == nil {
		return *cached, nil
	}
	if !errors.Is(err, ErrNotFound) {
		// Store trouble degrades to recomputation rather than failing
		// the item.
		log.Printf("pipeline: store lookup for %s failed: %v", fp, err)
	}

	now := s.now()

	var (
		wg        sync.WaitGroup
		virality  float64
		sentiment content.SentimentScores
		trends    content.TrendIndicators
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		virality = scoring.Virality(item, now)
	}()
	go func() {
		defer wg.Done()
		sentiment = s.sentiment.Scores(fallbackText(item.Text, item.Caption))
		trends = scoring.ExtractTrends(item, now)
	}()
	wg.Wait()

	source := item
	source.ImageData = nil

	analysis := content.Analysis{
		Fingerprint:   fp,
		AnalyzedAt:    now.UTC(),
		ViralityScore: virality,
		Sentiment:     sentiment,
		Trends:        trends,
		Source:        source,
	}

	if err := s.store.Put(ctx, analysis); err != nil {
		return content.Analysis{}, fmt.Errorf("persisting analysis %s: %w", fp, err)
	}

	s.publish(analysis)
	return analysis, nil
}

// Lookup returns a stored analysis by fingerprint.
func (s *Service) Lookup(ctx context.Context, fp content.Fingerprint) (*content.Analysis, error) {
	return s.store.Get(ctx, fp)
}

// BatchResult summarizes one collection pass.
type BatchResult struct {
	RunID    string
	Fetched  int
	Analyzed int
	Skipped  int
	Failed   int
}

// CollectOnce fans out across all scrapers, normalizes and analyzes what
// they return. A failing platform yields an empty result and a logged error;
// the other platforms are still processed.
func (s *Service) CollectOnce(ctx context.Context) BatchResult {
	result := BatchResult{RunID: uuid.New().String()}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		records []RawRecord
	)

	for _, scraper := range s.scrapers {
		wg.Add(1)
		go func(sc PlatformScraper) {
			defer wg.Done()

			recs, err := sc.FetchTrending(ctx, s.cfg.FetchLimit)
			if err != nil {
				log.Printf("pipeline[%s]: fetch from %s failed: %v", result.RunID, sc.Platform(), err)
				return
			}

			mu.Lock()
			records = append(records, recs...)
			mu.Unlock()
		}(scraper)
	}
	wg.Wait()

	result.Fetched = len(records)

	items, skipped := NormalizeBatch(records)
	result.Skipped = skipped

	for _, item := range items {
		if _, err := s.Analyze(ctx, item); err != nil {
			log.Printf("pipeline[%s]: analyze %s failed: %v", result.RunID, item.Locator, err)
			result.Failed++
			continue
		}
		result.Analyzed++
	}

	log.Printf("pipeline[%s]: fetched=%d analyzed=%d skipped=%d failed=%d",
		result.RunID, result.Fetched, result.Analyzed, result.Skipped, result.Failed)
	return result
}

// RefreshEngagement re-snapshots engagement metrics for recent posts on
// platforms with a point-lookup API. A post whose metrics moved gets a fresh
// analysis under a new fingerprint; an unchanged post dedups to the stored
// record. Returns the number of posts refreshed.
func (s *Service) RefreshEngagement(ctx context.Context) int {
	if len(s.refreshers) == 0 {
		return 0
	}

	records, err := s.store.QueryRecent(ctx, s.cfg.RefreshWindow)
	if err != nil {
		log.Printf("pipeline: refresh query failed: %v", err)
		return 0
	}

	// Snapshots of one post share a locator; fetch each post once.
	seen := make(map[string]bool)
	refreshed := 0
	for _, a := range records {
		refresher, ok := s.refreshers[a.Source.Platform]
		if !ok || seen[a.Source.Locator] {
			continue
		}
		seen[a.Source.Locator] = true

		metrics, err := refresher.FetchEngagement(ctx, postIDFromLocator(a.Source.Locator))
		if err != nil {
			log.Printf("pipeline: refreshing %s failed: %v", a.Source.Locator, err)
			continue
		}

		item := a.Source
		item.Metrics = metrics
		if _, err := s.Analyze(ctx, item); err != nil {
			log.Printf("pipeline: re-analyzing %s failed: %v", a.Source.Locator, err)
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		log.Printf("pipeline: refreshed engagement for %d posts", refreshed)
	}
	return refreshed
}

// postIDFromLocator strips the platform path prefix, leaving the native post
// id: "r/memes/abc" -> "abc", "channel/42" -> "42", bare tweet ids unchanged.
func postIDFromLocator(locator string) string {
	if i := strings.LastIndex(locator, "/"); i >= 0 {
		return locator[i+1:]
	}
	return locator
}

// Run executes collection passes at the configured interval until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	interval := s.cfg.FetchInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CollectOnce(ctx)
			s.RefreshEngagement(ctx)
		}
	}
}

type analysisEvent struct {
	Fingerprint   content.Fingerprint `json:"fingerprint"`
	Platform      content.Platform    `json:"platform"`
	Locator       string              `json:"locator"`
	ViralityScore float64             `json:"virality_score"`
	AnalyzedAt    time.Time           `json:"analyzed_at"`
}

func (s *Service) publish(a content.Analysis) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(analysisEvent{
		Fingerprint:   a.Fingerprint,
		Platform:      a.Source.Platform,
		Locator:       a.Source.Locator,
		ViralityScore: a.ViralityScore,
		AnalyzedAt:    a.AnalyzedAt,
	})
	if err != nil {
		return
	}

	topic := fmt.Sprintf("%s.created", s.cfg.EventsTopic)
	if err := s.events.Publish(topic, data); err != nil {
		log.Printf("pipeline: publishing analysis event failed: %v", err)
	}
}
