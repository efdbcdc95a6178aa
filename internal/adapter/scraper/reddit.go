// Package scraper holds the platform collectors that feed the analysis
// pipeline with raw records.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"memewatch/internal/domain/content"
	"memewatch/internal/service/pipeline"
)

// defaultSubreddits are the communities polled for meme-coin chatter.
var defaultSubreddits = []string{
	"memes",
	"dankmemes",
	"CryptoCurrency",
	"CryptoMoonShots",
	"SatoshiStreetBets",
	"dogecoin",
}

const redditUserAgent = "memewatch/1.0"

// RedditScraper fetches hot posts from a fixed set of subreddits over the
// public JSON listing API.
type RedditScraper struct {
	httpClient *http.Client
	baseURL    string
	subreddits []string
}

// redditListing mirrors the relevant slice of a listing response.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Author      string  `json:"author"`
	Score       float64 `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments float64 `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	PostHint    string  `json:"post_hint"`
	Stickied    bool    `json:"stickied"`
}

// NewRedditScraper creates a scraper over the default subreddit set.
func NewRedditScraper(subreddits []string) *RedditScraper {
	if len(subreddits) == 0 {
		subreddits = defaultSubreddits
	}
	return &RedditScraper{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		baseURL:    "https://www.reddit.com",
		subreddits: subreddits,
	}
}

func (s *RedditScraper) Platform() content.Platform { return content.PlatformReddit }

// FetchTrending pulls up to limit hot posts per subreddit. A failing
// subreddit is logged and skipped so one dead community does not starve the
// batch.
func (s *RedditScraper) FetchTrending(ctx context.Context, limit int) ([]pipeline.RawRecord, error) {
	if limit <= 0 {
		limit = 25
	}

	var records []pipeline.RawRecord
	var lastErr error
	for _, subreddit := range s.subreddits {
		posts, err := s.fetchSubreddit(ctx, subreddit, limit)
		if err != nil {
			log.Printf("scraper[reddit]: fetching r/%s failed: %v", subreddit, err)
			lastErr = err
			continue
		}
		records = append(records, posts...)
	}

	if len(records) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all subreddit fetches failed, last: %w", lastErr)
	}
	return records, nil
}

func (s *RedditScraper) fetchSubreddit(ctx context.Context, subreddit string, limit int) ([]pipeline.RawRecord, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", s.baseURL, subreddit, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Reddit throttles requests without a distinct User-Agent.
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Reddit API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reddit API returned status code %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode Reddit API response: %w", err)
	}

	var records []pipeline.RawRecord
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied || !looksLikeMemePost(post) {
			continue
		}

		records = append(records, pipeline.RedditPost{
			ID:          post.ID,
			Subreddit:   post.Subreddit,
			Title:       post.Title,
			SelfText:    post.SelfText,
			URL:         post.URL,
			Author:      post.Author,
			Score:       post.Score,
			UpvoteRatio: post.UpvoteRatio,
			NumComments: post.NumComments,
			CreatedUTC:  post.CreatedUTC,
		})
	}
	return records, nil
}

// FetchEngagement refreshes the engagement metrics of an already-seen post
// via the info endpoint. Used to re-snapshot virality inputs without a full
// listing crawl.
func (s *RedditScraper) FetchEngagement(ctx context.Context, postID string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/api/info.json?id=t3_%s", s.baseURL, postID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Reddit API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reddit API returned status code %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode Reddit API response: %w", err)
	}
	if len(listing.Data.Children) == 0 {
		return nil, fmt.Errorf("post %s not found", postID)
	}

	post := listing.Data.Children[0].Data
	return map[string]float64{
		"score":        post.Score,
		"upvote_ratio": post.UpvoteRatio,
		"num_comments": post.NumComments,
	}, nil
}

// looksLikeMemePost keeps image posts and text posts, dropping bare link
// posts with no analyzable content.
func looksLikeMemePost(post redditPostData) bool {
	if post.PostHint == "image" {
		return true
	}
	if post.SelfText != "" {
		return true
	}
	for _, suffix := range []string{".jpg", ".jpeg", ".png", ".gif"} {
		if strings.HasSuffix(post.URL, suffix) {
			return true
		}
	}
	return post.Title != "" && post.URL == ""
}
