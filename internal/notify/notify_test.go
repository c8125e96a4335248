package notify

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"rss_digest/internal/model"
)

type sentMsg struct {
	ChatID int64
	Text   string
	NoPrev bool
}

type mockAPI struct {
	sent []sentMsg
	err  error
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.err != nil {
		return tgbotapi.Message{}, m.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text, NoPrev: msg.DisableWebPagePreview})
	}
	return tgbotapi.Message{}, nil
}

func newTestNotifier(api *mockAPI) *Telegram {
	return &Telegram{
		api:    api,
		chatID: 42,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func article(title, link string) model.Article {
	return model.Article{Title: title, Link: link, PublishedAt: time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC)}
}

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name   string
		report model.Report
		want   string
	}{
		{
			name:   "empty run",
			report: model.Report{},
			want:   "Done: 0/0 feeds ok, 0 articles",
		},
		{
			name: "priority headlines and failures",
			report: model.Report{
				FeedsTotal:    3,
				FeedsOK:       2,
				TotalArticles: 3,
				Feeds: []model.FeedResult{
					{
						Name: "DevOps Weekly", Priority: true, Status: model.StatusOK, Count: 2,
						Articles: []model.Article{
							article("Kubernetes 1.40", "https://devops.example.com/k8s"),
							article("Helm tips", "https://devops.example.com/helm"),
						},
					},
					{
						Name: "Misc", Status: model.StatusOK, Count: 1,
						Articles: []model.Article{article("Not listed", "https://misc.example.com/1")},
					},
					{Name: "Broken", Priority: true, Status: model.StatusError, Error: "boom", Articles: []model.Article{}},
				},
			},
			want: "Done: 2/3 feeds ok, 3 articles\n\n" +
				"Priority headlines:\n\n" +
				"[DevOps Weekly] Kubernetes 1.40\nhttps://devops.example.com/k8s\n\n" +
				"[DevOps Weekly] Helm tips\nhttps://devops.example.com/helm\n\n" +
				"Failed: Broken",
		},
		{
			name: "no priority feeds",
			report: model.Report{
				FeedsTotal: 1, FeedsOK: 1, TotalArticles: 1,
				Feeds: []model.FeedResult{
					{Name: "Misc", Status: model.StatusOK, Count: 1, Articles: []model.Article{article("A", "https://a")}},
				},
			},
			want: "Done: 1/1 feeds ok, 1 articles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FormatSummary(tt.report)); diff != "" {
				t.Errorf("FormatSummary() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatSummaryCapsHeadlines(t *testing.T) {
	var articles []model.Article
	for i := range 15 {
		articles = append(articles, article(fmt.Sprintf("Post %d", i), fmt.Sprintf("https://p.example.com/%d", i)))
	}
	r := model.Report{
		FeedsTotal: 1, FeedsOK: 1, TotalArticles: 15,
		Feeds: []model.FeedResult{{Name: "P", Priority: true, Status: model.StatusOK, Count: 15, Articles: articles}},
	}

	got := FormatSummary(r)
	if n := strings.Count(got, "[P] "); n != MaxHeadlines {
		t.Errorf("headline count = %d, want %d", n, MaxHeadlines)
	}
	if strings.Contains(got, "Post 10") {
		t.Error("summary lists headlines beyond the cap")
	}
}

func TestFormatSummaryMessageLimit(t *testing.T) {
	long := strings.Repeat("я", 900)
	r := model.Report{
		FeedsTotal: 1, FeedsOK: 1, TotalArticles: 10,
		Feeds: []model.FeedResult{{
			Name: "P", Priority: true, Status: model.StatusOK, Count: 10,
			Articles: []model.Article{
				article(long, "https://a"), article(long, "https://b"), article(long, "https://c"),
				article(long, "https://d"), article(long, "https://e"),
			},
		}},
	}

	got := FormatSummary(r)
	if n := utf8.RuneCountInString(got); n != maxMessageLen {
		t.Errorf("message length = %d runes, want %d", n, maxMessageLen)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated message is not valid UTF-8")
	}
}

func TestNotify(t *testing.T) {
	api := &mockAPI{}
	n := newTestNotifier(api)

	if err := n.Notify(model.Report{FeedsTotal: 2, FeedsOK: 2, TotalArticles: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []sentMsg{{ChatID: 42, Text: "Done: 2/2 feeds ok, 5 articles", NoPrev: true}}
	if diff := cmp.Diff(want, api.sent); diff != "" {
		t.Errorf("sent messages mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifySendError(t *testing.T) {
	api := &mockAPI{err: errors.New("forbidden")}
	n := newTestNotifier(api)

	err := n.Notify(model.Report{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "forbidden") {
		t.Errorf("error %q does not wrap the API error", err)
	}
}
