// Package model defines the domain types used across the application.
package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// isoLayout renders instants with a numeric offset, "+00:00" for UTC.
const isoLayout = "2006-01-02T15:04:05.999999-07:00"

// FeedDescriptor identifies one configured feed.
type FeedDescriptor struct {
	Name     string
	URL      string
	Priority bool
	Category string
}

// Article is a single accepted feed entry.
type Article struct {
	Title       string
	Link        string
	PublishedAt time.Time
}

// MarshalJSON keeps the offset the article was published with.
func (a Article) MarshalJSON() ([]byte, error) {
	return marshal(struct {
		Title string `json:"title"`
		Link  string `json:"link"`
		Date  string `json:"date"`
	}{a.Title, a.Link, FormatTime(a.PublishedAt)})
}

// Status is the outcome of fetching a single feed.
type Status string

// Supported statuses.
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// FeedResult holds the outcome of processing one FeedDescriptor.
type FeedResult struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Category string    `json:"category"`
	Priority bool      `json:"priority"`
	Status   Status    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Count    int       `json:"count"`
	Articles []Article `json:"articles"`
}

// Report is the terminal artifact of a run.
type Report struct {
	Generated     time.Time
	Hours         int
	FeedsTotal    int
	FeedsOK       int
	TotalArticles int
	Feeds         []FeedResult
}

// MarshalJSON renders the report with ISO-8601 timestamps and never emits
// a null feeds array.
func (r Report) MarshalJSON() ([]byte, error) {
	feeds := r.Feeds
	if feeds == nil {
		feeds = []FeedResult{}
	}
	return marshal(struct {
		Generated     string       `json:"generated"`
		Hours         int          `json:"hours"`
		FeedsTotal    int          `json:"feeds_total"`
		FeedsOK       int          `json:"feeds_ok"`
		TotalArticles int          `json:"total_articles"`
		Feeds         []FeedResult `json:"feeds"`
	}{FormatTime(r.Generated), r.Hours, r.FeedsTotal, r.FeedsOK, r.TotalArticles, feeds})
}

// FormatTime renders t as ISO-8601 with a numeric offset.
func FormatTime(t time.Time) string {
	return t.Format(isoLayout)
}

// marshal encodes v without HTML escaping so titles keep "&", "<" and ">".
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
