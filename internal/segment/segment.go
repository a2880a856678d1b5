// Package segment walks classified pages in order and groups them into
// Documents, one per contiguous run of a dominant page type (component C).
package segment

import (
	"fmt"

	"github.com/citeline/chronology-core/internal/domain"
)

// Build walks pages (already classified and in page-number order) and
// partitions them into Documents. A new Document starts whenever the page
// type changes; the dominant span's type becomes the document's declared
// type. Spans partition [page_start, page_end] exactly (§4.C).
func Build(sourceDocumentID string, pages []domain.Page) []domain.Document {
	if len(pages) == 0 {
		return nil
	}

	var docs []domain.Document
	start := 0

	flush := func(end int) {
		spans := buildSpans(pages[start : end+1])
		docs = append(docs, domain.Document{
			DocumentID:       fmt.Sprintf("%s-doc-%d", sourceDocumentID, len(docs)+1),
			SourceDocumentID: sourceDocumentID,
			PageStart:        pages[start].PageNumber,
			PageEnd:          pages[end].PageNumber,
			PageTypes:        spans,
			DeclaredType:     dominantType(spans),
			Confidence:       averageConfidence(pages[start : end+1]),
		})
	}

	for i := 1; i < len(pages); i++ {
		if pages[i].PageType != pages[i-1].PageType {
			flush(i - 1)
			start = i
		}
	}
	flush(len(pages) - 1)

	return docs
}

// buildSpans groups a contiguous page slice (all same Document) into
// per-type Spans. Since Build already splits on every type change, a
// Document's pages are usually one uniform span, but this also tolerates
// being handed a pre-merged run with internal type changes.
func buildSpans(pages []domain.Page) []domain.Span {
	var spans []domain.Span
	spanStart := 0
	for i := 1; i <= len(pages); i++ {
		if i == len(pages) || pages[i].PageType != pages[spanStart].PageType {
			spans = append(spans, domain.Span{
				Start: pages[spanStart].PageNumber,
				End:   pages[i-1].PageNumber,
				Type:  pages[spanStart].PageType,
			})
			spanStart = i
		}
	}
	return spans
}

func dominantType(spans []domain.Span) domain.PageType {
	best := domain.PageOther
	bestLen := -1
	for _, s := range spans {
		length := s.End - s.Start + 1
		if length > bestLen {
			bestLen = length
			best = s.Type
		}
	}
	return best
}

func averageConfidence(pages []domain.Page) int {
	if len(pages) == 0 {
		return 0
	}
	sum := 0
	for _, p := range pages {
		sum += p.Confidence
	}
	return sum / len(pages)
}
