package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"memewatch/internal/domain/content"
	"memewatch/internal/service/scoring"
)

type memoryStore struct {
	mu       sync.Mutex
	analyses map[content.Fingerprint]content.Analysis
	gets     int
	puts     int
	failPut  bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{analyses: make(map[content.Fingerprint]content.Analysis)}
}

func (s *memoryStore) Get(ctx context.Context, fp content.Fingerprint) (*content.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	a, ok := s.analyses[fp]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *memoryStore) Put(ctx context.Context, a content.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failPut {
		return errors.New("disk full")
	}
	s.analyses[a.Fingerprint] = a
	return nil
}

func (s *memoryStore) QueryRecent(ctx context.Context, window time.Duration) ([]content.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []content.Analysis
	for _, a := range s.analyses {
		out = append(out, a)
	}
	return out, nil
}

type stubScraper struct {
	platform content.Platform
	records  []RawRecord
	err      error
}

func (s stubScraper) Platform() content.Platform { return s.platform }

func (s stubScraper) FetchTrending(ctx context.Context, limit int) ([]RawRecord, error) {
	return s.records, s.err
}

type refreshingScraper struct {
	stubScraper
	engagement map[string]map[string]float64
	fetches    int
}

func (s *refreshingScraper) FetchEngagement(ctx context.Context, postID string) (map[string]float64, error) {
	s.fetches++
	metrics, ok := s.engagement[postID]
	if !ok {
		return nil, errors.New("post not found")
	}
	return metrics, nil
}

func testService(store Store, scrapers ...PlatformScraper) *Service {
	return NewService(store, scoring.NewSentimentAnalyzer(), scrapers, nil, Config{})
}

var testItemCreatedAt = time.Now().Add(-time.Hour).UTC()

func testItem() content.ContentItem {
	return content.ContentItem{
		Platform: content.PlatformReddit,
		Locator:  "r/dogecoin/abc",
		Text:     "doge is mooning, amazing gains",
		Metrics: map[string]float64{
			"score":        2000,
			"upvote_ratio": 0.9,
			"num_comments": 150,
		},
		CreatedAt: testItemCreatedAt,
	}
}

func TestAnalyzeProducesScores(t *testing.T) {
	store := newMemoryStore()
	svc := testService(store)

	analysis, err := svc.Analyze(context.Background(), testItem())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.Fingerprint == "" {
		t.Fatal("missing fingerprint")
	}
	if analysis.ViralityScore <= 0.5 {
		t.Fatalf("hot reddit post scored %f", analysis.ViralityScore)
	}
	if analysis.Sentiment.Positive == 0 && analysis.Sentiment.Negative == 0 && analysis.Sentiment.Neutral == 0 {
		t.Fatal("sentiment not computed")
	}
	if store.puts != 1 {
		t.Fatalf("expected 1 store put, got %d", store.puts)
	}
}

func TestAnalyzeDeduplicates(t *testing.T) {
	store := newMemoryStore()
	svc := testService(store)

	first, err := svc.Analyze(context.Background(), testItem())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Analyze(context.Background(), testItem())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.puts != 1 {
		t.Fatalf("duplicate item was recomputed: %d puts", store.puts)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Fatal("fingerprints differ")
	}
	if !first.AnalyzedAt.Equal(second.AnalyzedAt) {
		t.Fatal("cached analysis was not returned verbatim")
	}
}

func TestAnalyzeDistinctItemsDistinctEntries(t *testing.T) {
	store := newMemoryStore()
	svc := testService(store)

	itemA := testItem()
	itemB := testItem()
	itemB.Text = "pepe looks terrible today"

	a, _ := svc.Analyze(context.Background(), itemA)
	b, _ := svc.Analyze(context.Background(), itemB)

	if a.Fingerprint == b.Fingerprint {
		t.Fatal("distinct items share a fingerprint")
	}
	if store.puts != 2 {
		t.Fatalf("expected 2 puts, got %d", store.puts)
	}
}

func TestAnalyzeStripsImageData(t *testing.T) {
	store := newMemoryStore()
	svc := testService(store)

	item := testItem()
	item.ImageData = []byte{1, 2, 3}

	analysis, err := svc.Analyze(context.Background(), item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Source.ImageData != nil {
		t.Fatal("image bytes leaked into the stored analysis")
	}
}

func TestAnalyzePutFailure(t *testing.T) {
	store := newMemoryStore()
	store.failPut = true
	svc := testService(store)

	if _, err := svc.Analyze(context.Background(), testItem()); err == nil {
		t.Fatal("expected persistence error")
	}
}

func TestCollectOnceFanOut(t *testing.T) {
	store := newMemoryStore()
	svc := testService(store,
		stubScraper{
			platform: content.PlatformReddit,
			records: []RawRecord{
				RedditPost{ID: "a", Subreddit: "memes", Title: "doge up", CreatedUTC: float64(time.Now().Unix())},
				RedditPost{Subreddit: "memes", CreatedUTC: 1}, // malformed, skipped
			},
		},
		stubScraper{
			platform: content.PlatformTwitter,
			err:      errors.New("rate limited"),
		},
		stubScraper{
			platform: content.PlatformTelegram,
			records: []RawRecord{
				TelegramMessage{MessageID: 9, Channel: "sig", Text: "bonk", Date: time.Now().Unix()},
			},
		},
	)

	result := svc.CollectOnce(context.Background())

	if result.Fetched != 3 {
		t.Fatalf("fetched = %d, want 3", result.Fetched)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}
	if result.Analyzed != 2 {
		t.Fatalf("analyzed = %d, want 2", result.Analyzed)
	}
	if result.Failed != 0 {
		t.Fatalf("failed = %d, want 0", result.Failed)
	}
}

func TestRefreshEngagementSnapshotsChangedMetrics(t *testing.T) {
	store := newMemoryStore()
	rs := &refreshingScraper{
		stubScraper: stubScraper{platform: content.PlatformReddit},
		engagement: map[string]map[string]float64{
			"abc": {"score": 9000, "upvote_ratio": 0.95, "num_comments": 400},
		},
	}
	svc := testService(store, rs)

	if _, err := svc.Analyze(context.Background(), testItem()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := svc.RefreshEngagement(context.Background()); n != 1 {
		t.Fatalf("refreshed = %d, want 1", n)
	}
	if rs.fetches != 1 {
		t.Fatalf("engagement fetches = %d, want 1", rs.fetches)
	}
	if store.puts != 2 {
		t.Fatalf("changed metrics should add a snapshot: %d puts", store.puts)
	}

	// A second pass sees both snapshots but fetches the post once, and the
	// unchanged metrics dedup to the stored record.
	svc.RefreshEngagement(context.Background())
	if rs.fetches != 2 {
		t.Fatalf("engagement fetches = %d, want 2", rs.fetches)
	}
	if store.puts != 2 {
		t.Fatalf("unchanged metrics must not add a snapshot: %d puts", store.puts)
	}
}

func TestRefreshEngagementFetchFailureSkipsPost(t *testing.T) {
	store := newMemoryStore()
	rs := &refreshingScraper{
		stubScraper: stubScraper{platform: content.PlatformReddit},
	}
	svc := testService(store, rs)

	if _, err := svc.Analyze(context.Background(), testItem()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := svc.RefreshEngagement(context.Background()); n != 0 {
		t.Fatalf("refreshed = %d, want 0", n)
	}
	if store.puts != 1 {
		t.Fatalf("failed fetch must not touch the store: %d puts", store.puts)
	}
}

func TestRefreshEngagementSkipsUnrefreshablePlatforms(t *testing.T) {
	store := newMemoryStore()
	svc := testService(store, stubScraper{platform: content.PlatformTelegram})

	item := content.ContentItem{
		Platform:  content.PlatformTelegram,
		Locator:   "signals/42",
		Text:      "bonk looking strong",
		CreatedAt: time.Now().Add(-time.Hour).UTC(),
	}
	if _, err := svc.Analyze(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := svc.RefreshEngagement(context.Background()); n != 0 {
		t.Fatalf("refreshed = %d, want 0", n)
	}
}

func TestCollectOnceAllScrapersFail(t *testing.T) {
	store := newMemoryStore()
	svc := testService(store,
		stubScraper{platform: content.PlatformReddit, err: errors.New("down")},
		stubScraper{platform: content.PlatformTwitter, err: errors.New("down")},
	)

	result := svc.CollectOnce(context.Background())
	if result.Fetched != 0 || result.Analyzed != 0 {
		t.Fatalf("expected empty batch, got %+v", result)
	}
}
