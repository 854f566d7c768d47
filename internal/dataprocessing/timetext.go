package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateTimeLayouts are tried in order after separator normalization. The
// upstream exports mix slash and hyphen dates and sometimes omit seconds or
// the whole time part.
var dateTimeLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006-01-02",
}

// digitExtractPattern recovers year/month/day/hour/minute and optional
// seconds from strings no layout matches (e.g. stray whitespace, a "T"
// separator, or mixed . and : inside the time).
var digitExtractPattern = regexp.MustCompile(
	`(\d{4})[/-](\d{2})[/-](\d{2})[ T]?(\d{2})[.:](\d{2})(?:[.:](\d{2}))?`)

// ParseDateTime parses free-form date/time text from a spreadsheet cell.
// A literal "." used as a time separator is treated as ":". Returns false
// for empty or unparseable input; it never fails the batch.
func ParseDateTime(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return time.Time{}, false
	}

	// Only the first two dots can be time separators; the date part uses
	// slashes or hyphens.
	normalized := strings.Replace(s, ".", ":", 2)

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, true
		}
	}

	m := digitExtractPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second := 0
	if m[6] != "" {
		second, _ = strconv.Atoi(m[6])
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalizes out-of-range components; reject anything that
	// did not round-trip so garbage digits don't become silent dates.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, false
	}
	return t, true
}

// ParseOptionalDateTime is ParseDateTime with a pointer result, for feeding
// optional record fields directly.
func ParseOptionalDateTime(text string) *time.Time {
	t, ok := ParseDateTime(text)
	if !ok {
		return nil
	}
	return &t
}
