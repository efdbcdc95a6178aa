// Package bot exposes the signal engine over a Telegram command interface
// and feeds channel posts into the collection pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"memewatch/internal/domain/content"
	"memewatch/internal/domain/signal"
	"memewatch/internal/service/aggregate"
)

// ChannelSink receives channel-post updates for later collection.
type ChannelSink interface {
	HandleUpdate(update tgbotapi.Update)
}

// Insight adds model commentary to a signal. Optional.
type Insight interface {
	Commentary(ctx context.Context, sig signal.TickerSignal) string
}

// Bot answers signal queries in chat and routes channel posts to the sink.
type Bot struct {
	api     *tgbotapi.BotAPI
	engine  *aggregate.Engine
	sink    ChannelSink
	insight Insight
	symbols []string
	window  time.Duration
}

func NewBot(token string, engine *aggregate.Engine, sink ChannelSink, insight Insight, symbols []string, window time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	if window <= 0 {
		window = 24 * time.Hour
	}

	return &Bot{
		api:     api,
		engine:  engine,
		sink:    sink,
		insight: insight,
		symbols: symbols,
		window:  window,
	}, nil
}

// Start polls for updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	log.Printf("bot: polling as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.ChannelPost != nil && b.sink != nil {
		b.sink.HandleUpdate(update)
		return
	}
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text

	switch {
	case strings.HasPrefix(text, "/start"):
		b.handleStart(chatID)
	case strings.HasPrefix(text, "/help"):
		b.handleHelp(chatID)
	case strings.HasPrefix(text, "/radar"):
		b.handleRadar(ctx, chatID)
	case strings.HasPrefix(text, "/detective"):
		b.handleDetective(ctx, chatID, text)
	case strings.HasPrefix(text, "/vibe"):
		b.handleVibe(ctx, chatID)
	case strings.HasPrefix(text, "/crystal"):
		b.handleCrystal(ctx, chatID, text)
	case strings.HasPrefix(text, "/observe"):
		b.handleObserve(ctx, chatID)
	default:
		b.sendMessage(chatID, "Unknown command. Use /help for available commands.")
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.sendMessage(chatID, `Welcome to Memewatch! 🐸

I track meme-coin chatter across reddit, twitter and telegram and turn it into trading signals.

Commands:
/radar - Top trending tickers right now
/detective DOGE - Deep dive on one ticker
/vibe - Overall market mood
/crystal DOGE - Volume and price predictions
/observe - Collection observatory
/help - Show this help`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.sendMessage(chatID, fmt.Sprintf(`Memewatch Help 📖

/radar - Ranked high-confidence ticker signals
/detective SYMBOL - Full signal breakdown for one ticker
/vibe - Sentiment mood across all tracked content
/crystal SYMBOL - Volume and price impact predictions
/observe - What the collectors have gathered lately

Tracked tickers: %s`, strings.Join(b.symbols, ", ")))
}

func (b *Bot) handleRadar(ctx context.Context, chatID int64) {
	signals, err := b.engine.TrendingTickers(ctx, b.window, 5)
	if err != nil {
		log.Printf("bot: radar failed: %v", err)
		b.sendMessage(chatID, "Radar is down, try again in a bit.")
		return
	}
	if len(signals) == 0 {
		b.sendMessage(chatID, "📡 Radar is quiet: no ticker has enough confident data right now.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📡 Meme Coin Radar\n\n")
	for i, sig := range signals {
		sb.WriteString(fmt.Sprintf("%d. %s  sentiment %+.2f  virality %.2f  confidence %.0f%%\n",
			i+1, sig.Symbol, sig.SentimentScore, sig.ViralityScore, sig.Confidence*100))
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleDetective(ctx context.Context, chatID int64, text string) {
	symbol, ok := parseSymbol(text)
	if !ok {
		b.sendMessage(chatID, "Usage: /detective DOGE")
		return
	}

	sig, err := b.engine.AnalyzeTicker(ctx, symbol, b.window)
	if err != nil {
		if errors.Is(err, aggregate.ErrInsufficientData) {
			b.sendMessage(chatID, fmt.Sprintf("🔍 Not enough chatter about %s in the last %s to build a case.", symbol, b.window))
			return
		}
		log.Printf("bot: detective %s failed: %v", symbol, err)
		b.sendMessage(chatID, "The detective is off duty, try again later.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 Case File: %s\n\n", sig.Symbol))
	sb.WriteString(fmt.Sprintf("Sentiment: %+.3f\n", sig.SentimentScore))
	sb.WriteString(fmt.Sprintf("Virality: %.3f\n", sig.ViralityScore))
	sb.WriteString(fmt.Sprintf("Trend strength: %.3f\n", sig.TrendStrength))
	sb.WriteString(fmt.Sprintf("Confidence: %.0f%% over %d posts\n", sig.Confidence*100, sig.SupportingData.SampleCount))
	sb.WriteString(formatPlatforms(sig.SupportingData.PlatformDistribution))

	if len(sig.SupportingData.CommonTopics) > 0 {
		topics := make([]string, 0, len(sig.SupportingData.CommonTopics))
		for _, tc := range sig.SupportingData.CommonTopics {
			topics = append(topics, fmt.Sprintf("%s(%d)", tc.Term, tc.Count))
		}
		sb.WriteString("Topics: " + strings.Join(topics, ", ") + "\n")
	}
	if len(sig.SupportingData.ViralPosts) > 0 {
		sb.WriteString("\nLoudest posts:\n")
		for _, post := range sig.SupportingData.ViralPosts {
			sb.WriteString(fmt.Sprintf("• [%s] %s (%.2f)\n", post.Platform, post.Locator, post.ViralityScore))
		}
	}

	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleVibe(ctx context.Context, chatID int64) {
	stats, err := b.engine.Stats(ctx, b.window)
	if err != nil {
		log.Printf("bot: vibe failed: %v", err)
		b.sendMessage(chatID, "Can't read the room right now.")
		return
	}
	if stats.SampleCount == 0 {
		b.sendMessage(chatID, "😶 Nothing collected in the window yet.")
		return
	}

	mood := "neutral 😐"
	delta := stats.SentimentBreakdown.Positive - stats.SentimentBreakdown.Negative
	switch {
	case delta > 0.15:
		mood = "bullish 🚀"
	case delta < -0.15:
		mood = "bearish 🩸"
	}

	b.sendMessage(chatID, fmt.Sprintf(`🎭 Market Vibe: %s

Posts analyzed: %d
Positive: %.0f%%  Negative: %.0f%%  Neutral: %.0f%%
Mean virality: %.2f`,
		mood,
		stats.SampleCount,
		stats.SentimentBreakdown.Positive*100,
		stats.SentimentBreakdown.Negative*100,
		stats.SentimentBreakdown.Neutral*100,
		stats.MeanVirality))
}

func (b *Bot) handleCrystal(ctx context.Context, chatID int64, text string) {
	symbol, ok := parseSymbol(text)
	if !ok {
		b.sendMessage(chatID, "Usage: /crystal DOGE")
		return
	}

	sig, err := b.engine.AnalyzeTicker(ctx, symbol, b.window)
	if err != nil {
		if errors.Is(err, aggregate.ErrInsufficientData) {
			b.sendMessage(chatID, fmt.Sprintf("🔮 The crystal ball is cloudy: not enough data on %s.", symbol))
			return
		}
		log.Printf("bot: crystal %s failed: %v", symbol, err)
		b.sendMessage(chatID, "The crystal ball cracked, try again later.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔮 Crystal Ball: %s\n\n", sig.Symbol))
	sb.WriteString(fmt.Sprintf("Volume prediction: %.1f\n", sig.VolumePrediction))
	sb.WriteString(fmt.Sprintf("Price impact: %+.1f\n", sig.PriceImpact))
	sb.WriteString(fmt.Sprintf("Confidence: %.0f%%\n", sig.Confidence*100))

	if b.insight != nil {
		sb.WriteString("\n" + b.insight.Commentary(ctx, *sig))
	}

	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleObserve(ctx context.Context, chatID int64) {
	stats, err := b.engine.Stats(ctx, b.window)
	if err != nil {
		log.Printf("bot: observe failed: %v", err)
		b.sendMessage(chatID, "The observatory is fogged in.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔭 Observatory\n\n")
	sb.WriteString(fmt.Sprintf("Window: %s\n", b.window))
	sb.WriteString(fmt.Sprintf("Posts analyzed: %d\n", stats.SampleCount))
	sb.WriteString(formatPlatforms(stats.PlatformDistribution))
	b.sendMessage(chatID, sb.String())
}

// parseSymbol extracts and uppercases the first argument of a command.
func parseSymbol(text string) (string, bool) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return "", false
	}
	return strings.ToUpper(strings.TrimPrefix(parts[1], "$")), true
}

func formatPlatforms(dist map[content.Platform]int) string {
	if len(dist) == 0 {
		return ""
	}
	var parts []string
	for _, platform := range []content.Platform{content.PlatformReddit, content.PlatformTwitter, content.PlatformTelegram, content.PlatformUnknown} {
		if n, ok := dist[platform]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", platform, n))
		}
	}
	return "Platforms: " + strings.Join(parts, ", ") + "\n"
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		log.Printf("bot: sending message failed: %v", err)
	}
}
