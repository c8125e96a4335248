// Package fetcher downloads feeds and turns each one into a result record.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"

	"rss_digest/internal/model"
	"rss_digest/internal/parser"
)

const (
	// DefaultTimeout bounds a single feed download, body included.
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent identifies the digest to feed servers.
	DefaultUserAgent = "TechDigest/1.0"
	// MaxErrorLen is the maximum length in characters of a result's error.
	MaxErrorLen = 100

	maxBodySize = 5 * 1024 * 1024
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProbeResult describes a feed as seen by a strict feed parser.
type ProbeResult struct {
	Title   string
	Type    string
	Version string
	Items   int
}

// Fetcher downloads feeds and extracts their recent articles.
type Fetcher struct {
	client    HTTPClient
	timeout   time.Duration
	userAgent string
	log       *slog.Logger
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:    client,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		log:       log,
	}
}

// SetTimeout overrides the default per-feed timeout.
func (f *Fetcher) SetTimeout(d time.Duration) {
	f.timeout = d
}

// SetUserAgent overrides the default User-Agent header.
func (f *Fetcher) SetUserAgent(ua string) {
	if ua != "" {
		f.userAgent = ua
	}
}

// Fetch downloads one feed and returns its articles published at or after
// cutoff. It never fails: any error, including a panic while parsing, is
// reported through an error result so that one bad feed cannot abort a run.
func (f *Fetcher) Fetch(ctx context.Context, feed model.FeedDescriptor, cutoff time.Time) (res model.FeedResult) {
	defer func() {
		if r := recover(); r != nil {
			res = errorResult(feed, fmt.Errorf("panic: %v", r))
			f.log.Error("fetch feed panicked", "name", feed.Name, "url", feed.URL, "panic", r)
		}
	}()

	start := time.Now()
	content, finalURL, err := f.download(ctx, feed.URL)
	if err != nil {
		f.log.Warn("fetch feed", "name", feed.Name, "url", feed.URL, "error", err)
		return errorResult(feed, err)
	}

	articles := parser.Parse(content, cutoff, finalURL)
	if articles == nil {
		articles = []model.Article{}
	}

	f.log.Debug("fetched feed",
		"name", feed.Name,
		"url", feed.URL,
		"final_url", finalURL,
		"articles", len(articles),
		"elapsed", time.Since(start),
	)

	return model.FeedResult{
		Name:     feed.Name,
		URL:      feed.URL,
		Category: feed.Category,
		Priority: feed.Priority,
		Status:   model.StatusOK,
		Count:    len(articles),
		Articles: articles,
	}
}

// Probe downloads url and parses it with gofeed, which rejects documents a
// lenient scan would still accept. It backs configuration checks.
func (f *Fetcher) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	content, _, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return &ProbeResult{
		Title:   feed.Title,
		Type:    feed.FeedType,
		Version: feed.FeedVersion,
		Items:   len(feed.Items),
	}, nil
}

// download performs the GET and returns the decoded body together with the
// URL of the final request after redirects.
func (f *Fetcher) download(ctx context.Context, url string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		body = body[:maxBodySize]
		f.log.Debug("feed body truncated", "url", url, "limit", maxBodySize)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return decode(body, resp.Header.Get("Content-Type")), finalURL, nil
}

// decode turns body into valid UTF-8. A non-UTF-8 charset declared in the
// Content-Type header is honoured; invalid sequences become U+FFFD.
func decode(body []byte, contentType string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if enc, name := charset.Lookup(params["charset"]); enc != nil && name != "utf-8" {
			if out, err := enc.NewDecoder().Bytes(body); err == nil {
				body = out
			}
		}
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "�")
	}
	return string(out)
}

func errorResult(feed model.FeedDescriptor, err error) model.FeedResult {
	return model.FeedResult{
		Name:     feed.Name,
		URL:      feed.URL,
		Category: feed.Category,
		Priority: feed.Priority,
		Status:   model.StatusError,
		Error:    parser.Truncate(err.Error(), MaxErrorLen),
		Count:    0,
		Articles: []model.Article{},
	}
}
