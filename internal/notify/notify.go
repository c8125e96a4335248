// Package notify sends the run summary to a Telegram chat.
package notify

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rss_digest/internal/model"
	"rss_digest/internal/parser"
)

const (
	// MaxHeadlines caps the priority headlines listed in a summary.
	MaxHeadlines = 10
	// maxMessageLen is Telegram's limit for a text message.
	maxMessageLen = 4096
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts report summaries to a single chat.
type Telegram struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// New creates a Telegram notifier for the given bot token and chat.
func New(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

// Notify sends the summary of r.
func (t *Telegram) Notify(r model.Report) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSummary(r))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}
	t.log.Debug("summary sent", "chat_id", t.chatID)
	return nil
}

// FormatSummary renders the report as a plain-text message: the totals line,
// then up to MaxHeadlines articles from priority feeds in report order, then
// the names of failed feeds.
func FormatSummary(r model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Done: %d/%d feeds ok, %d articles", r.FeedsOK, r.FeedsTotal, r.TotalArticles)

	n := 0
	for _, f := range r.Feeds {
		if !f.Priority || f.Status != model.StatusOK {
			continue
		}
		for _, a := range f.Articles {
			if n == MaxHeadlines {
				break
			}
			if n == 0 {
				b.WriteString("\n\nPriority headlines:")
			}
			fmt.Fprintf(&b, "\n\n[%s] %s\n%s", f.Name, a.Title, a.Link)
			n++
		}
	}

	var failed []string
	for _, f := range r.Feeds {
		if f.Status == model.StatusError {
			failed = append(failed, f.Name)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n\nFailed: %s", strings.Join(failed, ", "))
	}

	return parser.Truncate(b.String(), maxMessageLen)
}
