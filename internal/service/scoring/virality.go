package scoring

import (
	"math"
	"time"

	"memewatch/internal/domain/content"
)

// Calibration constants for the per-platform virality formulas. Each platform
// exposes a different engagement vocabulary, so each gets its own hand-tuned
// normalization onto a common 0..1 axis. Changing any of these changes scores
// for all historical content.
const (
	baseVirality = 0.5

	redditRatioWeight    = 0.3
	redditCommentsScale  = 1000
	redditCommentsCap    = 0.3
	redditScoreScale     = 10000
	redditScoreCap       = 0.4
	twitterRetweetWeight = 2.0
	twitterReplyWeight   = 1.5
	twitterQuoteWeight   = 2.0
	twitterViralScale    = 10000
	telegramViewScale    = 1000
	telegramForwardMult  = 5.0
	telegramReplyMult    = 2.0
	telegramNorm         = 100
	decayReferenceHours  = 24.0
	decayFloor           = 0.1
)

// Virality computes a 0..1 virality score for an item at the given reference
// time. Unknown platforms and items without metrics fall back to the base
// score. Never returns a value outside [0, 1].
func Virality(item content.ContentItem, now time.Time) float64 {
	if len(item.Metrics) == 0 {
		return baseVirality
	}

	switch item.Platform {
	case content.PlatformReddit:
		return redditVirality(item)
	case content.PlatformTwitter:
		return twitterVirality(item, now)
	case content.PlatformTelegram:
		return telegramVirality(item, now)
	default:
		return baseVirality
	}
}

func redditVirality(item content.ContentItem) float64 {
	score := baseVirality
	score += (item.Metric("upvote_ratio") - 0.5) * redditRatioWeight
	score += math.Min(item.Metric("num_comments")/redditCommentsScale, redditCommentsCap)
	score += math.Min(item.Metric("score")/redditScoreScale, redditScoreCap)
	return clamp01(score)
}

func twitterVirality(item content.ContentItem, now time.Time) float64 {
	engagement := item.Metric("likes") +
		item.Metric("retweets")*twitterRetweetWeight +
		item.Metric("replies")*twitterReplyWeight +
		item.Metric("quotes")*twitterQuoteWeight

	engagementComponent := math.Min(1, engagement/twitterViralScale)
	return clamp01(engagementComponent * timeDecay(item.CreatedAt, now))
}

func telegramVirality(item content.ContentItem, now time.Time) float64 {
	engagement := (item.Metric("views")/telegramViewScale +
		item.Metric("forwards")*telegramForwardMult +
		item.Metric("replies")*telegramReplyMult) / telegramNorm

	return clamp01(math.Min(1, engagement) * timeDecay(item.CreatedAt, now))
}

// timeDecay favours fresh posts: full weight inside the first day, decaying
// toward a 0.1 floor afterwards. Non-positive ages never divide.
func timeDecay(createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours <= 0 {
		return 1.0
	}
	return clamp(decayReferenceHours/hours, decayFloor, 1.0)
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
