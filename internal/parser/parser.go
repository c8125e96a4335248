// Package parser extracts recent articles from raw RSS and Atom documents.
//
// Extraction is deliberately text based rather than a validating XML parse,
// so that feeds with broken markup still yield whatever items can be found.
package parser

import (
	"time"
	"unicode/utf8"

	"rss_digest/internal/model"
)

const (
	// MaxArticlesPerFeed caps the number of articles kept per feed.
	MaxArticlesPerFeed = 20
	// MaxTitleLen is the maximum title length in characters.
	MaxTitleLen = 200
)

// Parse returns the articles in content published at or after cutoff, in
// document order, capped at MaxArticlesPerFeed. RSS <item> blocks are tried
// first; Atom <entry> blocks are only scanned when no RSS item qualified.
// Relative links are resolved against base.
func Parse(content string, cutoff time.Time, base string) []model.Article {
	articles := parseRSS(content, cutoff, base)
	if len(articles) == 0 {
		articles = parseAtom(content, cutoff, base)
	}
	if len(articles) > MaxArticlesPerFeed {
		articles = articles[:MaxArticlesPerFeed]
	}
	return articles
}

func parseRSS(content string, cutoff time.Time, base string) []model.Article {
	var articles []model.Article
	for _, block := range blocks(itemRe, content) {
		title := StripTags(Tag(block, "title"))
		link := ResolveLink(Tag(block, "link"), base)
		date := Tag(block, "pubDate")
		if date == "" {
			date = Tag(block, "dc:date")
		}
		if a, ok := accept(title, link, date, cutoff); ok {
			articles = append(articles, a)
		}
	}
	return articles
}

func parseAtom(content string, cutoff time.Time, base string) []model.Article {
	var articles []model.Article
	for _, block := range blocks(entryRe, content) {
		title := StripTags(Tag(block, "title"))
		var link string
		if m := hrefRe.FindStringSubmatch(block); m != nil {
			link = m[1]
		} else {
			link = Tag(block, "link")
		}
		link = ResolveLink(link, base)
		date := Tag(block, "updated")
		if date == "" {
			date = Tag(block, "published")
		}
		if a, ok := accept(title, link, date, cutoff); ok {
			articles = append(articles, a)
		}
	}
	return articles
}

// accept builds an article when title and link are present and the date
// parses to an instant not before cutoff. Undated entries are dropped so
// that old content without a date never leaks into the window.
func accept(title, link, date string, cutoff time.Time) (model.Article, bool) {
	if title == "" || link == "" {
		return model.Article{}, false
	}
	published, ok := ParseDate(date)
	if !ok || published.Before(cutoff) {
		return model.Article{}, false
	}
	return model.Article{
		Title:       Truncate(title, MaxTitleLen),
		Link:        link,
		PublishedAt: published,
	}, true
}

// Truncate cuts s to at most n characters without splitting a rune.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
