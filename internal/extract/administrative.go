package extract

import (
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

// Administrative extracts a low-weight event per page for administrative
// and otherwise-unclassified pages, so every page still has a graph
// presence even when it carries no domain-specific facts (§4.F).
func Administrative(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	dates := resolveDocumentDates(pages, anchor)

	var events []domain.Event
	var citations []domain.Citation
	for i, p := range pages {
		event, cit := buildBasicEvent(sourceDocumentID, providerID, p, domain.EventAdministrative, dates[i], sharedFactPatterns, i)
		events = append(events, event)
		citations = append(citations, cit...)
	}
	return events, citations
}
