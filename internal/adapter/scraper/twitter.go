package scraper

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"

	"memewatch/internal/domain/content"
	"memewatch/internal/service/pipeline"
)

// defaultTwitterQuery covers the tracked meme-coin hashtags. Retweets are
// excluded so engagement counts belong to the original post.
const defaultTwitterQuery = "(#doge OR #dogecoin OR #pepe OR #pepecoin OR #wojak OR #floki OR #bonk OR #memecoin) -is:retweet"

const maxSearchResults = 100

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// TwitterScraper searches recent tweets for meme-coin hashtags via the v2
// recent-search endpoint.
type TwitterScraper struct {
	client *twitter.Client
	query  string
}

// NewTwitterScraper builds a scraper authenticated with an app bearer token.
func NewTwitterScraper(bearerToken, query string) *TwitterScraper {
	if query == "" {
		query = defaultTwitterQuery
	}
	return &TwitterScraper{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     http.DefaultClient,
			Host:       "https://api.twitter.com",
		},
		query: query,
	}
}

// NewTwitterScraperOAuth1 builds a scraper with user-context credentials for
// deployments without an app bearer token.
func NewTwitterScraperOAuth1(consumerKey, consumerSecret, accessToken, accessSecret, query string) *TwitterScraper {
	if query == "" {
		query = defaultTwitterQuery
	}

	config := oauth1.NewConfig(consumerKey, consumerSecret)
	httpClient := config.Client(oauth1.NoContext, oauth1.NewToken(accessToken, accessSecret))

	return &TwitterScraper{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{},
			Client:     httpClient,
			Host:       "https://api.twitter.com",
		},
		query: query,
	}
}

func (s *TwitterScraper) Platform() content.Platform { return content.PlatformTwitter }

// FetchTrending runs one recent-search page of up to limit tweets.
func (s *TwitterScraper) FetchTrending(ctx context.Context, limit int) ([]pipeline.RawRecord, error) {
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	// The endpoint rejects max_results below 10.
	if limit < 10 {
		limit = 10
	}

	opts := twitter.TweetRecentSearchOpts{
		MaxResults: limit,
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldPublicMetrics,
			twitter.TweetFieldEntities,
		},
	}

	res, err := s.client.TweetRecentSearch(ctx, s.query, opts)
	if err != nil {
		return nil, fmt.Errorf("tweet recent search: %w", err)
	}

	var records []pipeline.RawRecord
	for _, tweet := range res.Raw.Tweets {
		if tweet == nil {
			continue
		}

		var hashtags []string
		if tweet.Entities != nil {
			for _, tag := range tweet.Entities.HashTags {
				hashtags = append(hashtags, tag.Tag)
			}
		}

		rec := pipeline.Tweet{
			ID:        tweet.ID,
			Text:      tweet.Text,
			CreatedAt: tweet.CreatedAt,
			Hashtags:  hashtags,
		}
		if tweet.PublicMetrics != nil {
			rec.Likes = float64(tweet.PublicMetrics.Likes)
			rec.Retweets = float64(tweet.PublicMetrics.Retweets)
			rec.Replies = float64(tweet.PublicMetrics.Replies)
			rec.Quotes = float64(tweet.PublicMetrics.Quotes)
		}
		records = append(records, rec)
	}
	return records, nil
}
