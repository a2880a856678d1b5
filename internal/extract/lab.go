package extract

import (
	"regexp"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

var labValuePattern = regexp.MustCompile(`(?im)^\s*([A-Z][A-Za-z0-9 /%-]{2,30}):\s*([\d.]+\s*[a-zA-Z/%]*)\s*$`)

var labPatterns = append(append([]factPattern{}, sharedFactPatterns...),
	factPattern{domain.FactLab, labValuePattern},
)

// Lab extracts one lab-result event per page of a lab document (§4.F).
func Lab(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	dates := resolveDocumentDates(pages, anchor)

	var events []domain.Event
	var citations []domain.Citation
	for i, p := range pages {
		event, cit := buildBasicEvent(sourceDocumentID, providerID, p, domain.EventLabResult, dates[i], labPatterns, i)
		events = append(events, event)
		citations = append(citations, cit...)
	}
	return events, citations
}
