package parser

import (
	"net/url"
	"strings"
)

// ResolveLink makes link absolute against base, the feed's final URL.
// Empty links and links already carrying an http(s) scheme are returned
// unchanged, as is anything that does not parse as a URL reference.
func ResolveLink(link, base string) string {
	if link == "" {
		return link
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	b, err := url.Parse(base)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return b.ResolveReference(ref).String()
}
