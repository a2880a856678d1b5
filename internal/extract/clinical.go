package extract

import (
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

// Clinical extracts one office-visit event per page of a clinical-note
// document (§4.F).
func Clinical(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	dates := resolveDocumentDates(pages, anchor)

	var events []domain.Event
	var citations []domain.Citation
	for i, p := range pages {
		event, cit := buildBasicEvent(sourceDocumentID, providerID, p, domain.EventOfficeVisit, dates[i], sharedFactPatterns, i)
		event.Diagnoses = dedupStrings(icd10Pattern.FindAllString(p.Text, -1))
		events = append(events, event)
		citations = append(citations, cit...)
	}
	return events, citations
}
