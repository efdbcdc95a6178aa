// Package insight turns computed ticker signals into short natural-language
// commentary via a chat model.
package insight

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"memewatch/internal/domain/signal"
)

const fallbackInsight = "no insight available"

// Generator produces signal commentary. A nil Generator is valid and always
// returns the fallback text, so callers need no API-key branching.
type Generator struct {
	client openai.Client
	model  string
}

func NewGenerator(apiKey string) *Generator {
	return &Generator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  "gpt-4o-mini",
	}
}

// Commentary summarizes one ticker signal in two or three sentences. Any
// model failure degrades to the fallback text; commentary is decoration,
// never a pipeline dependency.
func (g *Generator) Commentary(ctx context.Context, sig signal.TickerSignal) string {
	if g == nil {
		return fallbackInsight
	}

	response, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a crypto market analyst. Summarize social-signal data for a meme coin in 2-3 plain sentences. No financial advice, no hype."),
			openai.UserMessage(buildPrompt(sig)),
		},
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(200),
	})

	if err != nil {
		log.Printf("insight: commentary for %s failed: %v", sig.Symbol, err)
		return fallbackInsight
	}
	if len(response.Choices) == 0 {
		return fallbackInsight
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return fallbackInsight
	}
	return text
}

func buildPrompt(sig signal.TickerSignal) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ticker: %s\n", sig.Symbol))
	sb.WriteString(fmt.Sprintf("Sentiment score (-1..1): %.3f\n", sig.SentimentScore))
	sb.WriteString(fmt.Sprintf("Virality score (0..1): %.3f\n", sig.ViralityScore))
	sb.WriteString(fmt.Sprintf("Trend strength (0..1): %.3f\n", sig.TrendStrength))
	sb.WriteString(fmt.Sprintf("Volume prediction: %.1f\n", sig.VolumePrediction))
	sb.WriteString(fmt.Sprintf("Price impact: %.1f\n", sig.PriceImpact))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f over %d posts\n", sig.Confidence, sig.SupportingData.SampleCount))

	if len(sig.SupportingData.CommonTopics) > 0 {
		topics := make([]string, 0, len(sig.SupportingData.CommonTopics))
		for _, tc := range sig.SupportingData.CommonTopics {
			topics = append(topics, tc.Term)
		}
		sb.WriteString("Common topics: " + strings.Join(topics, ", ") + "\n")
	}

	return sb.String()
}
