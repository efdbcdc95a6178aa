package scoring

import (
	"math"
	"testing"
)

func TestScoresEmptyText(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	for _, text := range []string{"", "   ", "\n\t"} {
		scores := analyzer.Scores(text)
		if scores.Positive != 0 || scores.Negative != 0 || scores.Neutral != 0 {
			t.Fatalf("expected all-zero scores for %q, got %+v", text, scores)
		}
	}
}

func TestScoresSumToOne(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	texts := []string{
		"DOGE is absolutely mooning, I love it!",
		"this coin is a terrible scam, avoid",
		"the market opened at nine",
	}

	for _, text := range texts {
		scores := analyzer.Scores(text)
		sum := scores.Positive + scores.Negative + scores.Neutral
		if math.Abs(sum-1) > 1e-6 {
			t.Fatalf("scores for %q sum to %f, want 1", text, sum)
		}
	}
}

func TestScoresPolarity(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	positive := analyzer.Scores("I love this amazing wonderful coin, great gains!")
	if positive.Positive <= positive.Negative {
		t.Fatalf("positive text scored pos=%f neg=%f", positive.Positive, positive.Negative)
	}

	negative := analyzer.Scores("this is a horrible disgusting scam, I hate it")
	if negative.Negative <= negative.Positive {
		t.Fatalf("negative text scored pos=%f neg=%f", negative.Positive, negative.Negative)
	}
}

func TestScoresDeltaRange(t *testing.T) {
	analyzer := NewSentimentAnalyzer()

	delta := analyzer.Scores("moon moon moon amazing gains").Delta()
	if delta < -1 || delta > 1 {
		t.Fatalf("delta %f outside [-1, 1]", delta)
	}
}
