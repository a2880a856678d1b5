package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

var (
	modalityPattern   = regexp.MustCompile(`(?i)\b(MRI|CT scan|CT|X-ray|XRAY|ultrasound|PET scan|EMG|nerve conduction)\b`)
	bodyRegionPattern = regexp.MustCompile(`(?i)\b(cervical|lumbar|thoracic|spine|knee|shoulder|hip|ankle|wrist|brain|head|chest|abdomen|pelvis)\b`)
	impressionPattern = regexp.MustCompile(`(?im)^\s*impression\s*:?\s*(.+)$`)
)

// parseImagingDetail pulls the structured imaging fields out of a report's
// free text. Returns nil when no imaging signal is present.
func parseImagingDetail(text string) *domain.ImagingDetail {
	detail := &domain.ImagingDetail{}
	if m := modalityPattern.FindString(text); m != "" {
		detail.Modality = strings.ToUpper(m)
	}
	if m := bodyRegionPattern.FindString(text); m != "" {
		detail.BodyRegion = strings.ToLower(m)
	}
	if m := impressionPattern.FindStringSubmatch(text); m != nil {
		detail.Impression = strings.TrimSpace(m[1])
	}
	if detail.Modality == "" && detail.BodyRegion == "" && detail.Impression == "" {
		return nil
	}
	return detail
}

// Imaging extracts one imaging-study event per page of an imaging-report
// document (§4.F).
func Imaging(sourceDocumentID, providerID string, pages []domain.Page, anchor time.Time) ([]domain.Event, []domain.Citation) {
	dates := resolveDocumentDates(pages, anchor)

	var events []domain.Event
	var citations []domain.Citation
	for i, p := range pages {
		event, cit := buildBasicEvent(sourceDocumentID, providerID, p, domain.EventImagingStudy, dates[i], sharedFactPatterns, i)
		event.Imaging = parseImagingDetail(p.Text)
		events = append(events, event)
		citations = append(citations, cit...)
	}
	return events, citations
}
