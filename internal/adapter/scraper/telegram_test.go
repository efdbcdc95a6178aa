package scraper

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"memewatch/internal/service/pipeline"
)

func channelPost(channel string, id int, text string) tgbotapi.Update {
	return tgbotapi.Update{
		ChannelPost: &tgbotapi.Message{
			MessageID: id,
			Date:      1709294400,
			Text:      text,
			Chat:      &tgbotapi.Chat{UserName: channel},
		},
	}
}

func TestTelegramBuffersChannelPosts(t *testing.T) {
	s := NewTelegramScraper(nil)

	s.HandleUpdate(channelPost("memesignals", 1, "doge pumping"))
	s.HandleUpdate(channelPost("memesignals", 2, "bonk next"))

	if s.Buffered() != 2 {
		t.Fatalf("buffered = %d", s.Buffered())
	}

	records, err := s.FetchTrending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	msg, ok := records[0].(pipeline.TelegramMessage)
	if !ok {
		t.Fatalf("unexpected type %T", records[0])
	}
	if msg.Channel != "memesignals" || msg.MessageID != 1 || msg.Text != "doge pumping" {
		t.Fatalf("record = %+v", msg)
	}

	// Drained.
	if s.Buffered() != 0 {
		t.Fatalf("buffer not drained: %d", s.Buffered())
	}
}

func TestTelegramChannelFilter(t *testing.T) {
	s := NewTelegramScraper([]string{"@MemeSignals"})

	s.HandleUpdate(channelPost("memesignals", 1, "tracked"))
	s.HandleUpdate(channelPost("randomchat", 2, "untracked"))

	if s.Buffered() != 1 {
		t.Fatalf("buffered = %d, want only the tracked channel", s.Buffered())
	}
}

func TestTelegramIgnoresNonChannelAndEmpty(t *testing.T) {
	s := NewTelegramScraper(nil)

	s.HandleUpdate(tgbotapi.Update{})
	s.HandleUpdate(channelPost("memesignals", 1, ""))

	if s.Buffered() != 0 {
		t.Fatalf("buffered = %d", s.Buffered())
	}
}

func TestTelegramFetchLimit(t *testing.T) {
	s := NewTelegramScraper(nil)
	for i := 1; i <= 5; i++ {
		s.HandleUpdate(channelPost("memesignals", i, "post"))
	}

	records, err := s.FetchTrending(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if s.Buffered() != 2 {
		t.Fatalf("remaining = %d, want 2", s.Buffered())
	}
}

func TestTelegramBufferCap(t *testing.T) {
	s := NewTelegramScraper(nil)
	s.capacity = 3

	for i := 1; i <= 5; i++ {
		s.HandleUpdate(channelPost("memesignals", i, "post"))
	}

	if s.Buffered() != 3 {
		t.Fatalf("buffered = %d, want capacity cap of 3", s.Buffered())
	}

	records, _ := s.FetchTrending(context.Background(), 10)
	first := records[0].(pipeline.TelegramMessage)
	if first.MessageID != 3 {
		t.Fatalf("oldest surviving message = %d, want 3", first.MessageID)
	}
}
