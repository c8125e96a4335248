package parser

import (
	"regexp"
	"strings"
	"sync"
)

var (
	cdataRe  = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	markupRe = regexp.MustCompile(`<[^>]+>`)
	hrefRe   = regexp.MustCompile(`<link[^>]*href=["']([^"']+)["']`)
	itemRe   = regexp.MustCompile(`(?s)<item[^>]*>(.*?)</item>`)
	entryRe  = regexp.MustCompile(`(?s)<entry[^>]*>(.*?)</entry>`)
)

// tagCache holds compiled element patterns keyed by tag name.
var tagCache sync.Map

// Tag returns the inner text of the first <tag>...</tag> element in block,
// with any CDATA section unwrapped and surrounding whitespace trimmed.
// Matching is case-insensitive and may span lines. Nested markup is kept;
// use StripTags to drop it. An absent tag yields "".
func Tag(block, tag string) string {
	m := tagRegexp(tag).FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(unwrapCDATA(m[1]))
}

// StripTags removes anything that looks like markup and trims the result.
// Entities are left as they are.
func StripTags(s string) string {
	return strings.TrimSpace(markupRe.ReplaceAllString(s, ""))
}

func unwrapCDATA(s string) string {
	if m := cdataRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func tagRegexp(tag string) *regexp.Regexp {
	if re, ok := tagCache.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	q := regexp.QuoteMeta(tag)
	re := regexp.MustCompile(`(?is)<` + q + `[^>]*>(.*?)</` + q + `>`)
	tagCache.Store(tag, re)
	return re
}

// blocks returns the inner text of every match of re in document order.
func blocks(re *regexp.Regexp, content string) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
