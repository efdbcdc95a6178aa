package pipeline

import (
	"testing"
	"time"

	"memewatch/internal/domain/content"
)

func TestNormalizeReddit(t *testing.T) {
	item, err := Normalize(RedditPost{
		ID:          "abc123",
		Subreddit:   "dogecoin",
		Title:       "much wow",
		SelfText:    "such gains",
		URL:         "https://i.redd.it/x.png",
		Score:       1500,
		UpvoteRatio: 0.95,
		NumComments: 42,
		CreatedUTC:  1709294400,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.Platform != content.PlatformReddit {
		t.Fatalf("platform = %s", item.Platform)
	}
	if item.Locator != "r/dogecoin/abc123" {
		t.Fatalf("locator = %s", item.Locator)
	}
	if item.Text != "much wow" {
		t.Fatalf("text = %s", item.Text)
	}
	if item.Metric("score") != 1500 || item.Metric("upvote_ratio") != 0.95 || item.Metric("num_comments") != 42 {
		t.Fatalf("metrics = %v", item.Metrics)
	}
	if !item.CreatedAt.Equal(time.Unix(1709294400, 0).UTC()) {
		t.Fatalf("created_at = %s", item.CreatedAt)
	}
}

func TestNormalizeRedditTitleFallback(t *testing.T) {
	item, err := Normalize(RedditPost{
		ID:         "xyz",
		Subreddit:  "memes",
		SelfText:   "body only",
		CreatedUTC: 1709294400,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Text != "body only" {
		t.Fatalf("text fallback = %q", item.Text)
	}
}

func TestNormalizeTweet(t *testing.T) {
	item, err := Normalize(Tweet{
		ID:        "1764800000000000000",
		Text:      "pepe szn",
		CreatedAt: "2024-03-01T12:00:00Z",
		Likes:     10,
		Retweets:  2,
		Hashtags:  []string{"pepe"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.Platform != content.PlatformTwitter {
		t.Fatalf("platform = %s", item.Platform)
	}
	if item.Locator != "1764800000000000000" {
		t.Fatalf("locator = %s", item.Locator)
	}
	if item.Metric("likes") != 10 || item.Metric("retweets") != 2 {
		t.Fatalf("metrics = %v", item.Metrics)
	}
}

func TestNormalizeTelegram(t *testing.T) {
	item, err := Normalize(TelegramMessage{
		MessageID: 77,
		Channel:   "memesignals",
		Caption:   "bonk chart",
		Date:      1709294400,
		Views:     5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.Locator != "memesignals/77" {
		t.Fatalf("locator = %s", item.Locator)
	}
	if item.Text != "bonk chart" {
		t.Fatalf("caption fallback = %q", item.Text)
	}
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	bad := []RawRecord{
		RedditPost{Subreddit: "memes", CreatedUTC: 1709294400},          // no id
		RedditPost{ID: "a", CreatedUTC: 1709294400},                     // no subreddit
		RedditPost{ID: "a", Subreddit: "memes"},                         // no timestamp
		Tweet{Text: "no id", CreatedAt: "2024-03-01T12:00:00Z"},         // no id
		Tweet{ID: "1", Text: "bad ts", CreatedAt: "yesterday at lunch"}, // bad timestamp
		TelegramMessage{Channel: "c", Date: 1709294400},                 // no message id
		TelegramMessage{MessageID: 1, Date: 1709294400},                 // no channel
		TelegramMessage{MessageID: 1, Channel: "c"},                     // no date
	}

	for i, rec := range bad {
		if _, err := Normalize(rec); err == nil {
			t.Fatalf("record %d: expected error", i)
		}
	}
}

func TestNormalizeBatchSkipsAndCounts(t *testing.T) {
	records := []RawRecord{
		RedditPost{ID: "ok1", Subreddit: "memes", Title: "x", CreatedUTC: 1709294400},
		RedditPost{Subreddit: "memes", CreatedUTC: 1709294400},
		Tweet{ID: "ok2", Text: "y", CreatedAt: "2024-03-01T12:00:00Z"},
		Tweet{ID: "bad", CreatedAt: "not a time"},
	}

	items, skipped := NormalizeBatch(records)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", skipped)
	}
}
