package extract

import (
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

// PT extracts physical-therapy events, honoring RunConfig.PTMode: per-visit
// emits one event per page, aggregate merges the whole course of therapy
// into a single ranged event (§4.F, §6).
func PT(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time, mode domain.PTMode) ([]domain.Event, []domain.Citation) {
	if mode == domain.PTModePerVisit {
		return ptPerVisit(sourceDocumentID, providerID, pages, anchor)
	}
	return ptAggregate(sourceDocumentID, providerID, pages, anchor)
}

func ptPerVisit(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	dates := resolveDocumentDates(pages, anchor)

	var events []domain.Event
	var citations []domain.Citation
	for i, p := range pages {
		event, cit := buildBasicEvent(sourceDocumentID, providerID, p, domain.EventPTVisit, dates[i], sharedFactPatterns, i)
		events = append(events, event)
		citations = append(citations, cit...)
	}
	return events, citations
}

func ptAggregate(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	if len(pages) == 0 {
		return nil, nil
	}
	dates := resolveDocumentDates(pages, anchor)

	var allFacts []domain.Fact
	var citations []domain.Citation
	var pageNumbers []int
	var first, last time.Time

	for i, p := range pages {
		pageNumbers = append(pageNumbers, p.PageNumber)
		if !dates[i].Date.IsZero() {
			if first.IsZero() {
				first = dates[i].Date
			}
			last = dates[i].Date
		}
		facts, cit := extractFacts(p, sharedFactPatterns, func(snippet string) domain.Citation {
			return makeCitation(sourceDocumentID, p, snippet)
		})
		allFacts = append(allFacts, facts...)
		citations = append(citations, cit...)
	}

	var date domain.EventDate
	switch {
	case !first.IsZero() && !last.IsZero() && !first.Equal(last):
		f, l := first, last
		date = domain.EventDate{Kind: domain.DateKindRange, RangeStart: &f, RangeEnd: &l, Source: dates[0].Source}
	case !first.IsZero():
		f := first
		date = domain.EventDate{Kind: domain.DateKindSingle, Single: &f, Source: dates[0].Source}
	}

	citationIDs := make([]string, len(citations))
	for i, c := range citations {
		citationIDs[i] = c.CitationID
	}

	event := domain.Event{
		EventID:           makeEventID(sourceDocumentID, pages[0].PageNumber, domain.EventPTVisit, 0),
		ProviderID:        providerID,
		EventType:         domain.EventPTVisit,
		Date:              date,
		Facts:             allFacts,
		CitationIDs:       citationIDs,
		SourcePageNumbers: pageNumbers,
	}
	return []domain.Event{event}, citations
}
