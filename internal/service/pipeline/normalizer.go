package pipeline

import (
	"fmt"
	"time"

	"memewatch/internal/domain/content"
)

// RawRecord is one platform-native record as returned by a scraper. The
// concrete shapes below are the only ones that cross the normalizer
// boundary; downstream code works on content.ContentItem exclusively.
type RawRecord interface {
	platform() content.Platform
}

// RedditPost is a post from a subreddit listing.
type RedditPost struct {
	ID          string
	Subreddit   string
	Title       string
	SelfText    string
	URL         string
	Author      string
	Score       float64
	UpvoteRatio float64
	NumComments float64
	CreatedUTC  float64
}

func (RedditPost) platform() content.Platform { return content.PlatformReddit }

// Tweet is one result from a recent-search query. CreatedAt is the RFC 3339
// string the API returns.
type Tweet struct {
	ID        string
	Text      string
	CreatedAt string
	Likes     float64
	Retweets  float64
	Replies   float64
	Quotes    float64
	Hashtags  []string
	MediaURL  string
}

func (Tweet) platform() content.Platform { return content.PlatformTwitter }

// TelegramMessage is a channel post. Date is a Unix timestamp in seconds.
type TelegramMessage struct {
	MessageID int
	Channel   string
	Text      string
	Caption   string
	Date      int64
	Views     float64
	Forwards  float64
	Replies   float64
	PhotoRef  string
}

func (TelegramMessage) platform() content.Platform { return content.PlatformTelegram }

// Normalize converts a raw record into the canonical content model. Records
// with missing locator fields or unparseable timestamps are rejected with an
// error; callers skip and count them rather than propagating.
func Normalize(rec RawRecord) (content.ContentItem, error) {
	switch r := rec.(type) {
	case RedditPost:
		return normalizeReddit(r)
	case Tweet:
		return normalizeTweet(r)
	case TelegramMessage:
		return normalizeTelegram(r)
	default:
		return content.ContentItem{}, fmt.Errorf("unsupported record type %T", rec)
	}
}

// NormalizeBatch converts a batch, returning the surviving items and the
// count of records skipped as malformed.
func NormalizeBatch(recs []RawRecord) ([]content.ContentItem, int) {
	items := make([]content.ContentItem, 0, len(recs))
	skipped := 0
	for _, rec := range recs {
		item, err := Normalize(rec)
		if err != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped
}

func normalizeReddit(p RedditPost) (content.ContentItem, error) {
	if p.ID == "" || p.Subreddit == "" {
		return content.ContentItem{}, fmt.Errorf("reddit post missing id or subreddit")
	}
	if p.CreatedUTC <= 0 {
		return content.ContentItem{}, fmt.Errorf("reddit post %s: invalid created_utc %f", p.ID, p.CreatedUTC)
	}

	return content.ContentItem{
		Platform: content.PlatformReddit,
		Locator:  fmt.Sprintf("r/%s/%s", p.Subreddit, p.ID),
		Text:     fallbackText(p.Title, p.SelfText),
		Caption:  p.SelfText,
		ImageRef: p.URL,
		Metrics: map[string]float64{
			"score":        p.Score,
			"upvote_ratio": p.UpvoteRatio,
			"num_comments": p.NumComments,
		},
		CreatedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
	}, nil
}

func normalizeTweet(t Tweet) (content.ContentItem, error) {
	if t.ID == "" {
		return content.ContentItem{}, fmt.Errorf("tweet missing id")
	}
	createdAt, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		return content.ContentItem{}, fmt.Errorf("tweet %s: bad created_at %q: %w", t.ID, t.CreatedAt, err)
	}

	return content.ContentItem{
		Platform: content.PlatformTwitter,
		Locator:  t.ID,
		Text:     t.Text,
		Hashtags: t.Hashtags,
		ImageRef: t.MediaURL,
		Metrics: map[string]float64{
			"likes":    t.Likes,
			"retweets": t.Retweets,
			"replies":  t.Replies,
			"quotes":   t.Quotes,
		},
		CreatedAt: createdAt.UTC(),
	}, nil
}

func normalizeTelegram(m TelegramMessage) (content.ContentItem, error) {
	if m.MessageID <= 0 || m.Channel == "" {
		return content.ContentItem{}, fmt.Errorf("telegram message missing id or channel")
	}
	if m.Date <= 0 {
		return content.ContentItem{}, fmt.Errorf("telegram message %s/%d: invalid date %d", m.Channel, m.MessageID, m.Date)
	}

	return content.ContentItem{
		Platform: content.PlatformTelegram,
		Locator:  fmt.Sprintf("%s/%d", m.Channel, m.MessageID),
		Text:     fallbackText(m.Text, m.Caption),
		Caption:  m.Caption,
		ImageRef: m.PhotoRef,
		Metrics: map[string]float64{
			"views":    m.Views,
			"forwards": m.Forwards,
			"replies":  m.Replies,
		},
		CreatedAt: time.Unix(m.Date, 0).UTC(),
	}, nil
}

// fallbackText implements the text→caption→empty fallback chain.
func fallbackText(text, caption string) string {
	if text != "" {
		return text
	}
	return caption
}
