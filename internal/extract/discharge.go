package extract

import (
	"regexp"
	"time"

	"github.com/citeline/chronology-core/internal/dateextract"
	"github.com/citeline/chronology-core/internal/domain"
)

var (
	admissionDatePattern = regexp.MustCompile(`(?i)\badmi(?:t|ssion) date\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`)
	dischargeDatePattern = regexp.MustCompile(`(?i)\bdischarge date\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`)
)

// Discharge merges an entire discharge-summary document into one
// hospital-discharge event spanning its admission and discharge dates
// (§4.F). The constituent pages carry one logical encounter, unlike the
// per-page extractors used for notes and reports.
func Discharge(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	if len(pages) == 0 {
		return nil, nil
	}

	var admission, discharge time.Time
	var allFacts []domain.Fact
	var citations []domain.Citation
	var pageNumbers []int

	for _, p := range pages {
		pageNumbers = append(pageNumbers, p.PageNumber)
		if admission.IsZero() {
			if m := admissionDatePattern.FindStringSubmatch(p.Text); m != nil {
				if d, ok := parseDateString(m[1]); ok {
					admission = d
				}
			}
		}
		if m := dischargeDatePattern.FindStringSubmatch(p.Text); m != nil {
			if d, ok := parseDateString(m[1]); ok {
				discharge = d
			}
		}
		facts, cit := extractFacts(p, sharedFactPatterns, func(snippet string) domain.Citation {
			return makeCitation(sourceDocumentID, p, snippet)
		})
		allFacts = append(allFacts, facts...)
		citations = append(citations, cit...)
	}

	if discharge.IsZero() {
		dates := resolveDocumentDates(pages, anchor)
		discharge = dates[len(dates)-1].Date
	}

	var date domain.EventDate
	if !admission.IsZero() {
		a, d := admission, discharge
		date = domain.EventDate{Kind: domain.DateKindRange, RangeStart: &a, RangeEnd: &d, Source: domain.DateTier1}
	} else if !discharge.IsZero() {
		d := discharge
		date = domain.EventDate{Kind: domain.DateKindSingle, Single: &d, Source: domain.DateTier1}
	}

	citationIDs := make([]string, len(citations))
	for i, c := range citations {
		citationIDs[i] = c.CitationID
	}

	event := domain.Event{
		EventID:           makeEventID(sourceDocumentID, pages[0].PageNumber, domain.EventHospitalDischarge, 0),
		ProviderID:        providerID,
		EventType:         domain.EventHospitalDischarge,
		Date:              date,
		Facts:             allFacts,
		CitationIDs:       citationIDs,
		SourcePageNumbers: pageNumbers,
	}
	return []domain.Event{event}, citations
}

func parseDateString(raw string) (time.Time, bool) {
	return dateextract.ExtractTier2(raw)
}
