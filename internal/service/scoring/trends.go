package scoring

import (
	"math"
	"strings"
	"time"
	"unicode"

	"memewatch/internal/domain/content"
)

// Fixed term dictionaries. Loaded once at process start and never mutated;
// every component that needs them shares these instances.
var (
	cryptoTerms = termSet(
		"bullish", "bearish", "moon", "hodl", "fud", "dyor", "btc", "eth",
		"altcoin", "defi", "nft", "blockchain", "token", "wallet", "dex",
		"mining", "staking", "yield", "apy", "dao",
	)

	memeTerms = termSet(
		"pepe", "wojak", "chad", "doge", "stonks", "wen", "lambo", "ape",
		"moon", "fomo", "rekt", "based", "ngmi", "wagmi", "ser", "gm",
	)

	stopwords = termSet(
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "when",
		"at", "by", "for", "with", "about", "against", "between", "into",
		"through", "during", "before", "after", "above", "below", "to",
		"from", "up", "down", "in", "out", "on", "off", "over", "under",
		"again", "further", "once", "here", "there", "all", "any", "both",
		"each", "few", "more", "most", "other", "some", "such", "no", "nor",
		"not", "only", "own", "same", "so", "than", "too", "very", "can",
		"will", "just", "dont", "don", "should", "now", "is", "am", "are",
		"was", "were", "be", "been", "being", "have", "has", "had", "do",
		"does", "did", "of", "it", "its", "this", "that", "these", "those",
		"i", "you", "he", "she", "we", "they", "them", "his", "her", "my",
		"your", "our", "their", "what", "which", "who", "as", "until",
		"while", "because", "me", "him", "us",
	)
)

func termSet(terms ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

const topTopicCount = 5

// Tokenize lowercases text and splits it into alphanumeric tokens with
// stopwords removed. Duplicates are preserved; relevance denominators count
// every token.
func Tokenize(text string) []string {
	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := raw[:0]
	for _, tok := range raw {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ExtractTrends computes the lexical trend indicators for an item: topic
// frequencies, crypto/meme term relevance and engagement-derived popularity
// metrics. Empty text yields zero relevance and no topics, never an error.
func ExtractTrends(item content.ContentItem, now time.Time) content.TrendIndicators {
	indicators := content.TrendIndicators{
		TrendingTopics:    []string{},
		PopularityMetrics: popularityMetrics(item, now),
	}

	text := item.Text
	if text == "" {
		text = item.Caption
	}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return indicators
	}

	indicators.CryptoRelevance = float64(matchedTerms(tokens, cryptoTerms)) / float64(len(tokens))
	indicators.MemeRelevance = float64(matchedTerms(tokens, memeTerms)) / float64(len(tokens))
	indicators.TrendingTopics = topTopics(tokens, topTopicCount)

	return indicators
}

// matchedTerms counts the distinct dictionary terms present in tokens.
func matchedTerms(tokens []string, terms map[string]struct{}) int {
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if _, ok := terms[tok]; ok {
			seen[tok] = struct{}{}
		}
	}
	return len(seen)
}

// topTopics returns the most frequent tokens longer than 2 runes that are not
// purely numeric. Ties are broken by first occurrence in the text.
func topTopics(tokens []string, limit int) []string {
	counts := make(map[string]int)
	var order []string

	for _, tok := range tokens {
		if len([]rune(tok)) <= 2 || isNumeric(tok) {
			continue
		}
		if _, ok := counts[tok]; !ok {
			order = append(order, tok)
		}
		counts[tok]++
	}

	// Stable selection sort over the small candidate set keeps the
	// first-occurrence tie order without a comparator dance.
	topics := make([]string, 0, limit)
	for len(topics) < limit && len(order) > 0 {
		best := 0
		for i := 1; i < len(order); i++ {
			if counts[order[i]] > counts[order[best]] {
				best = i
			}
		}
		topics = append(topics, order[best])
		order = append(order[:best], order[best+1:]...)
	}
	return topics
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// popularityMetrics summarizes raw engagement into normalized 0..1 gauges.
func popularityMetrics(item content.ContentItem, now time.Time) map[string]float64 {
	engagement := item.Metric("likes") + item.Metric("comments") + item.Metric("shares") +
		item.Metric("views") + item.Metric("forwards") + item.Metric("replies")
	engagementRate := math.Min(1, engagement/10000)

	shares := item.Metric("shares") + item.Metric("retweets") + item.Metric("forwards")

	velocity := 0.0
	if !item.CreatedAt.IsZero() {
		ageHours := now.Sub(item.CreatedAt).Hours()
		velocity = math.Min(1, engagementRate/math.Max(ageHours, 1))
	}

	return map[string]float64{
		"engagement_rate": engagementRate,
		"virality_score":  math.Min(1, shares/1000),
		"trend_velocity":  velocity,
	}
}
