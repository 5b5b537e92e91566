package normalize

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDateRegex      = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)
	usDateRegex       = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`)
	europeanDateRegex = regexp.MustCompile(`^\d{1,2}[.-]\d{1,2}[.-]\d{4}`)
	compactDateRegex  = regexp.MustCompile(`^\d{8}$`)
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
}

// ParseDate recognizes ISO, US (MM/DD/YYYY) and European (DD.MM.YYYY, DD-MM-YYYY) dates,
// with or without a trailing time. It reports false instead of failing on other input.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if s == "" {
		return time.Time{}, false
	}

	switch {
	case isoDateRegex.MatchString(s):
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return parseDatePrefix(isoDateRegex.FindString(s), "2006-1-2")
	case usDateRegex.MatchString(s):
		return parseDatePrefix(usDateRegex.FindString(s), "1/2/2006")
	case europeanDateRegex.MatchString(s):
		prefix := strings.ReplaceAll(europeanDateRegex.FindString(s), "-", ".")
		return parseDatePrefix(prefix, "2.1.2006")
	case compactDateRegex.MatchString(s):
		return parseDatePrefix(s, "20060102")
	}
	return time.Time{}, false
}

func parseDatePrefix(s, layout string) (time.Time, bool) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
