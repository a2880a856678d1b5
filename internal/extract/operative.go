package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

var procedurePerformedPattern = regexp.MustCompile(`(?im)^\s*procedure(?:\s+performed)?\s*:?\s*(.+)$`)

var operativePatterns = append(append([]factPattern{}, sharedFactPatterns...),
	factPattern{domain.FactProcedureNote, procedurePerformedPattern},
)

// Operative extracts one procedure event per page of an operative-report
// document, plus the procedure/diagnosis codes mentioned on that page
// (§4.F).
func Operative(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	dates := resolveDocumentDates(pages, anchor)

	var events []domain.Event
	var citations []domain.Citation
	for i, p := range pages {
		event, cit := buildBasicEvent(sourceDocumentID, providerID, p, domain.EventProcedure, dates[i], operativePatterns, i)
		event.Diagnoses = dedupStrings(icd10Pattern.FindAllString(p.Text, -1))
		event.Procedures = dedupStrings(extractProcedureNames(p.Text))
		events = append(events, event)
		citations = append(citations, cit...)
	}
	return events, citations
}

func extractProcedureNames(text string) []string {
	var out []string
	for _, m := range procedurePerformedPattern.FindAllStringSubmatch(text, -1) {
		if name := strings.TrimSpace(m[1]); name != "" {
			out = append(out, name)
		}
	}
	return out
}
