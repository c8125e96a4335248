package parser

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -07:00",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// isoLayouts back the generic ISO-8601 fallback. A trailing "Z" has already
// been rewritten to "+00:00" when these run.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04-07:00",
	"2006-01-02 15:04-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"20060102",
}

// namedZones maps zone abbreviations seen in RFC-822 dates to their offsets
// in seconds. Anything else parses with a zero offset.
var namedZones = map[string]int{
	"UT":  0,
	"UTC": 0,
	"GMT": 0,
	"Z":   0,
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
}

// ParseDate normalizes a feed date string into a timezone-aware instant.
// Values without zone information are taken as UTC. ok is false when no
// supported format matches.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Parse only accepts upper-case zone abbreviations of three or more
	// letters.
	if i := strings.LastIndexByte(s, ' '); i >= 0 && isLetters(s[i+1:]) {
		s = s[:i+1] + strings.ToUpper(s[i+1:])
	}
	if strings.HasSuffix(s, " UT") {
		s += "C"
	}

	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "MST") {
			parsed = applyNamedZone(parsed)
		}
		return parsed, true
	}

	iso := s
	if strings.HasSuffix(iso, "Z") {
		iso = strings.TrimSuffix(iso, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.ParseInLocation(layout, iso, time.UTC); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// applyNamedZone replaces the zone Parse attached for an abbreviation with
// a fixed offset, since Parse only knows abbreviations of the local zone.
func applyNamedZone(t time.Time) time.Time {
	name, _ := t.Zone()
	offset := namedZones[strings.ToUpper(name)]
	y, mo, d := t.Date()
	h, mi, sec := t.Clock()
	loc := time.UTC
	if offset != 0 {
		loc = time.FixedZone(strings.ToUpper(name), offset)
	}
	return time.Date(y, mo, d, h, mi, sec, t.Nanosecond(), loc)
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
