package scraper

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"memewatch/internal/domain/content"
	"memewatch/internal/service/pipeline"
)

// defaultBufferSize caps how many channel posts are held between collection
// passes; older posts are dropped first.
const defaultBufferSize = 500

// TelegramScraper collects channel posts pushed to the bot via updates. The
// Bot API exposes no view or forward counters, so those metrics stay zero
// and telegram virality leans entirely on the time component.
type TelegramScraper struct {
	mu       sync.Mutex
	buffer   []pipeline.TelegramMessage
	capacity int
	channels map[string]struct{}
}

// NewTelegramScraper builds a scraper restricted to the given channel
// usernames; an empty list accepts posts from any channel the bot is in.
func NewTelegramScraper(channels []string) *TelegramScraper {
	s := &TelegramScraper{
		capacity: defaultBufferSize,
		channels: make(map[string]struct{}, len(channels)),
	}
	for _, ch := range channels {
		s.channels[strings.ToLower(strings.TrimPrefix(ch, "@"))] = struct{}{}
	}
	return s
}

func (s *TelegramScraper) Platform() content.Platform { return content.PlatformTelegram }

// HandleUpdate ingests one bot update, buffering it when it is a channel
// post from a tracked channel. Safe for concurrent use with FetchTrending.
func (s *TelegramScraper) HandleUpdate(update tgbotapi.Update) {
	msg := update.ChannelPost
	if msg == nil || msg.Chat == nil || msg.Chat.UserName == "" {
		return
	}
	if msg.Text == "" && msg.Caption == "" {
		return
	}

	channel := strings.ToLower(msg.Chat.UserName)
	if len(s.channels) > 0 {
		if _, tracked := s.channels[channel]; !tracked {
			return
		}
	}

	var photoRef string
	if len(msg.Photo) > 0 {
		photoRef = msg.Photo[len(msg.Photo)-1].FileID
	}

	rec := pipeline.TelegramMessage{
		MessageID: msg.MessageID,
		Channel:   channel,
		Text:      msg.Text,
		Caption:   msg.Caption,
		Date:      int64(msg.Date),
		PhotoRef:  photoRef,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, rec)
	if len(s.buffer) > s.capacity {
		s.buffer = s.buffer[len(s.buffer)-s.capacity:]
	}
}

// FetchTrending drains up to limit buffered posts, newest last.
func (s *TelegramScraper) FetchTrending(ctx context.Context, limit int) ([]pipeline.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.buffer)
	if limit > 0 && n > limit {
		n = limit
	}

	records := make([]pipeline.RawRecord, 0, n)
	for _, msg := range s.buffer[:n] {
		records = append(records, msg)
	}
	s.buffer = s.buffer[n:]
	return records, nil
}

// Buffered reports how many posts await the next collection pass.
func (s *TelegramScraper) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}
