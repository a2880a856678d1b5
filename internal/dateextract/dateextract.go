// Package dateextract implements the four-tier date extractor: tier1 label
// proximity, tier2 header/letterhead, propagated from the prior page of the
// same document, and anchor ("Day N" relative offsets) (component E).
package dateextract

import (
	"regexp"
	"strconv"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

var (
	tier1Label = regexp.MustCompile(`(?i)\b(?:date of service|dos|visit date|admit date)\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`)
	anyDate    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b|\b(\d{4})-(\d{2})-(\d{2})\b`)
	partialDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
	dayNPhrase  = regexp.MustCompile(`(?i)\bday\s+(\d+)\b`)
)

// Candidate is one ranked date reading for a page.
type Candidate struct {
	Date   time.Time
	Source domain.DateSource
}

func parseDate(raw string) (time.Time, bool) {
	layouts := []string{"1/2/2006", "1/2/06", "2006-01-02"}
	for _, l := range layouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractTier1 looks for a date adjacent to a service-date label.
func ExtractTier1(text string) (time.Time, bool) {
	m := tier1Label.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return parseDate(m[1])
}

// ExtractTier2 looks for any bare date in the page (treated as header or
// letterhead text, a weaker signal than a labeled date).
func ExtractTier2(text string) (time.Time, bool) {
	m := anyDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	if m[1] != "" {
		return parseDate(m[1] + "/" + m[2] + "/" + m[3])
	}
	return parseDate(m[4] + "-" + m[5] + "-" + m[6])
}

// ExtractAnchor resolves a "Day N" relative phrase against a nearby
// admission anchor date.
func ExtractAnchor(text string, anchorDate time.Time) (time.Time, bool) {
	if anchorDate.IsZero() {
		return time.Time{}, false
	}
	m := dayNPhrase.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	return anchorDate.AddDate(0, 0, n-1), true
}

// ResolvePageDate runs the tier cascade for one page, falling back to the
// document's propagated date (the previous page's resolved date) and
// finally an admission anchor, per §4.E.
func ResolvePageDate(text string, propagated time.Time, anchor time.Time) Candidate {
	if d, ok := ExtractTier1(text); ok {
		return Candidate{Date: d, Source: domain.DateTier1}
	}
	if d, ok := ExtractTier2(text); ok {
		return Candidate{Date: d, Source: domain.DateTier2}
	}
	if !propagated.IsZero() {
		return Candidate{Date: propagated, Source: domain.DatePropagated}
	}
	if d, ok := ExtractAnchor(text, anchor); ok {
		return Candidate{Date: d, Source: domain.DateAnchor}
	}
	return Candidate{}
}

// ResolvePartial extracts an MM/DD partial date, valid only when a year can
// be fixed from surrounding page context (passed in as contextYear).
func ResolvePartial(text string, contextYear int) (month, day int, ok bool) {
	if contextYear == 0 {
		return 0, 0, false
	}
	m := partialDate.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(m[1])
	day, _ = strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, false
	}
	return month, day, true
}

// ContextYear scans text for a 4-digit year in a sane range, used to fix
// partial dates that otherwise carry no year.
func ContextYear(text string, currentYear int) int {
	for _, m := range anyDate.FindAllStringSubmatch(text, -1) {
		var yearStr string
		if m[3] != "" {
			yearStr = m[3]
		} else if m[4] != "" {
			yearStr = m[4]
		}
		if yearStr == "" {
			continue
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			continue
		}
		if len(yearStr) == 2 {
			year += 2000
		}
		if domain.ValidateYear(year, currentYear) == nil {
			return year
		}
	}
	return 0
}

// ToEventDate converts a resolved Candidate into the tagged-union EventDate
// shape events carry.
func ToEventDate(c Candidate) domain.EventDate {
	if c.Date.IsZero() {
		return domain.EventDate{Kind: domain.DateKindRelative, Source: c.Source}
	}
	d := c.Date
	return domain.EventDate{Kind: domain.DateKindSingle, Single: &d, Source: c.Source}
}
