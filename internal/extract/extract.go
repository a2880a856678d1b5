package extract

import (
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

// ForDocument dispatches a segmented Document to its domain-specific event
// extractor based on its declared page type (§4.F).
func ForDocument(doc domain.Document, pages []domain.Page, providerID string, anchor time.Time, ptMode domain.PTMode) ([]domain.Event, []domain.Citation) {
	switch doc.DeclaredType {
	case domain.PageBilling:
		return Billing(doc.SourceDocumentID, providerID, pages, anchor)
	case domain.PageImagingReport:
		return Imaging(doc.SourceDocumentID, providerID, pages, anchor)
	case domain.PageOperativeReport:
		return Operative(doc.SourceDocumentID, providerID, pages, anchor)
	case domain.PagePTNote:
		return PT(doc.SourceDocumentID, providerID, pages, anchor, ptMode)
	case domain.PageLab:
		return Lab(doc.SourceDocumentID, providerID, pages, anchor)
	case domain.PageDischargeSummary:
		return Discharge(doc.SourceDocumentID, providerID, pages, anchor)
	case domain.PageClinicalNote:
		return Clinical(doc.SourceDocumentID, providerID, pages, anchor)
	default:
		return Administrative(doc.SourceDocumentID, providerID, pages, anchor)
	}
}
