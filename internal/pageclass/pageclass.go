// Package pageclass assigns a PageType to each page via keyword scoring
// across class-specific lexicons (component B).
package pageclass

import (
	"regexp"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

var lexicons = map[domain.PageType][]*regexp.Regexp{
	domain.PageBilling: compileAll(
		`\bstatement\b`, `\binvoice\b`, `\bbalance due\b`, `\bcpt\b`, `\bhcpcs\b`, `\bcopay\b`, `\bdeductible\b`, `\bexplanation of benefits\b`),
	domain.PageImagingReport: compileAll(
		`\bmri\b`, `\bct scan\b`, `\bx-ray\b`, `\bradiology\b`, `\bimpression\b`, `\bfindings\b`, `\bultrasound\b`),
	domain.PageOperativeReport: compileAll(
		`\boperative report\b`, `\bpreoperative diagnosis\b`, `\bpostoperative diagnosis\b`, `\bsurgeon\b`, `\banesthesia\b`, `\bprocedure performed\b`),
	domain.PagePTNote: compileAll(
		`\bphysical therap`, `\brange of motion\b`, `\bstrength\b.*\b\d/5\b`, `\bplan of care\b`, `\bhome exercise\b`),
	domain.PageLab: compileAll(
		`\blab(?:oratory)? results?\b`, `\bspecimen\b`, `\breference range\b`, `\bpanel\b`),
	domain.PageDischargeSummary: compileAll(
		`\bdischarge summary\b`, `\bdischarge diagnosis\b`, `\bdischarge instructions\b`, `\bhospital course\b`),
	domain.PageClinicalNote: compileAll(
		`\bchief complaint\b`, `\bhistory of present illness\b`, `\bassessment\b`, `\bplan\b`, `\bsubjective\b`, `\bobjective\b`),
	domain.PageAdministrative: compileAll(
		`\bconsent\b`, `\bauthorization\b`, `\brelease of information\b`, `\bregistration\b`, `\binsurance card\b`),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

// Classify scores text against every lexicon and returns the winning
// PageType with a confidence derived from the best-class score margin,
// breaking ties by the class-priority order (§4.B).
func Classify(text string) (domain.PageType, int) {
	scores := make(map[domain.PageType]int, len(lexicons))
	for pageType, patterns := range lexicons {
		count := 0
		for _, p := range patterns {
			count += len(p.FindAllString(text, -1))
		}
		scores[pageType] = count
	}

	best := domain.PageOther
	bestScore := 0
	secondScore := 0

	for _, pt := range []domain.PageType{
		domain.PageBilling, domain.PageImagingReport, domain.PageOperativeReport, domain.PagePTNote,
		domain.PageLab, domain.PageDischargeSummary, domain.PageClinicalNote, domain.PageAdministrative,
	} {
		score := scores[pt]
		switch {
		case score > bestScore:
			secondScore = bestScore
			bestScore = score
			best = pt
		case score == bestScore && score > 0 && domain.ClassPriorityRank(pt) < domain.ClassPriorityRank(best):
			best = pt
		case score > secondScore && score < bestScore:
			secondScore = score
		}
	}

	if bestScore == 0 {
		return domain.PageOther, 40
	}

	margin := bestScore - secondScore
	confidence := 50 + margin*10
	if confidence > 100 {
		confidence = 100
	}
	return best, confidence
}

// ClassifyPage mutates page.PageType/Confidence in place from page.Text.
func ClassifyPage(page *domain.Page) {
	pageType, confidence := Classify(strings.ToLower(page.Text))
	page.PageType = pageType
	page.Confidence = confidence
}
