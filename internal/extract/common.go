package extract

import (
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/citeline/chronology-core/internal/dateextract"
	"github.com/citeline/chronology-core/internal/domain"
)

// resolveDocumentDates runs the tier cascade across one document's pages in
// page-number order, threading the propagated date forward page to page
// (§4.E propagated tier).
func resolveDocumentDates(pages []domain.Page, anchor time.Time) []dateextract.Candidate {
	out := make([]dateextract.Candidate, len(pages))
	var propagated time.Time
	for i, p := range pages {
		c := dateextract.ResolvePageDate(p.Text, propagated, anchor)
		if !c.Date.IsZero() {
			propagated = c.Date
		}
		out[i] = c
	}
	return out
}

// makeCitation builds a Citation anchored to one page. TextHash and any
// BBOX_FALLBACK warning are filled in later by the citation post-processor
// (component G), which is the single place that owns that contract.
func makeCitation(sourceDocumentID string, page domain.Page, snippet string) domain.Citation {
	id := fmt.Sprintf("%s-p%d-%x", sourceDocumentID, page.PageNumber, sha1.Sum([]byte(snippet)))
	if len(id) > 48 {
		id = id[:48]
	}
	return domain.Citation{
		CitationID:       id,
		SourceDocumentID: sourceDocumentID,
		PageNumber:       page.PageNumber,
		Snippet:          snippet,
	}
}

func makeEventID(sourceDocumentID string, page int, eventType domain.EventType, seq int) string {
	return fmt.Sprintf("%s-p%d-%s-%d", sourceDocumentID, page, eventType, seq)
}

// buildBasicEvent runs the shared fact extraction for one page and wraps the
// result in an Event of the given type, anchored to that single page.
func buildBasicEvent(sourceDocumentID, providerID string, page domain.Page, eventType domain.EventType, date dateextract.Candidate, patterns []factPattern, seq int) (domain.Event, []domain.Citation) {
	facts, citations := extractFacts(page, patterns, func(snippet string) domain.Citation {
		return makeCitation(sourceDocumentID, page, snippet)
	})

	citationIDs := make([]string, len(citations))
	for i, c := range citations {
		citationIDs[i] = c.CitationID
	}

	event := domain.Event{
		EventID:           makeEventID(sourceDocumentID, page.PageNumber, eventType, seq),
		ProviderID:        providerID,
		EventType:         eventType,
		Date:              dateextract.ToEventDate(date),
		Facts:             facts,
		CitationIDs:       citationIDs,
		SourcePageNumbers: []int{page.PageNumber},
	}
	return event, citations
}

func dedupStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
