// Package projection implements the component K projection builder:
// resolving patient labels, formatting dates, relabeling encounter types,
// and merging entries that describe the same occurrence (§4.K).
package projection

import (
	"crypto/sha1"
	"fmt"
	"sort"

	"github.com/citeline/chronology-core/internal/domain"
)

var eventTypeDisplay = map[domain.EventType]string{
	domain.EventOfficeVisit:       "Office Visit",
	domain.EventPTVisit:           "Physical Therapy",
	domain.EventImagingStudy:      "Imaging Study",
	domain.EventProcedure:         "Procedure",
	domain.EventLabResult:         "Lab Result",
	domain.EventERVisit:           "Emergency Visit",
	domain.EventHospitalAdmission: "Hospital Admission",
	domain.EventHospitalDischarge: "Hospital Discharge",
	domain.EventInpatientDailyNote: "Inpatient Progress",
	domain.EventBillingEvent:      "Billing",
	domain.EventWorkStatus:        "Work Status",
	domain.EventAdministrative:    "Administrative",
	domain.EventOther:             "Other",
}

// displayFor resolves an event's display label, relabeling a bare
// "inpatient progress" note to "Clinical Note" when the event carries no
// actual inpatient-admission markers (§4.K).
func displayFor(e domain.Event, hasInpatientMarkers bool) string {
	label, ok := eventTypeDisplay[e.EventType]
	if !ok {
		label = string(e.EventType)
	}
	if e.EventType == domain.EventInpatientDailyNote && !hasInpatientMarkers {
		return "Clinical Note"
	}
	return label
}

// FormatDate renders an EventDate per the §4.K display rules.
func FormatDate(d domain.EventDate) string {
	switch d.Kind {
	case domain.DateKindSingle:
		if d.Single == nil {
			return "Undated"
		}
		if d.Time != "" {
			return fmt.Sprintf("%s %s", d.Single.Format("2006-01-02"), d.Time)
		}
		return fmt.Sprintf("%s (time not documented)", d.Single.Format("2006-01-02"))
	case domain.DateKindRange:
		if d.RangeStart == nil {
			return "Undated"
		}
		end := "Undated"
		if d.RangeEnd != nil {
			end = d.RangeEnd.Format("2006-01-02")
		}
		return fmt.Sprintf("%s to %s", d.RangeStart.Format("2006-01-02"), end)
	default:
		return "Undated"
	}
}

func factsKey(facts []domain.Fact) string {
	texts := make([]string, len(facts))
	for i, f := range facts {
		texts[i] = f.Text
	}
	sort.Strings(texts)
	h := sha1.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func factTexts(facts []domain.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.Text
	}
	return out
}

// Build converts deduplicated events into projection entries, merging
// entries whose (patient_label, date, event_type_display, provider_display,
// facts fingerprint) all coincide.
func Build(events []domain.Event, providerNames map[string]string) []domain.ChronologyProjectionEntry {
	type mergeKey struct {
		patient, date, eventType, provider, facts string
	}

	merged := make(map[mergeKey]*domain.ChronologyProjectionEntry)
	var order []mergeKey

	for _, e := range events {
		provider := providerNames[e.ProviderID]
		dateDisplay := FormatDate(e.Date)
		typeDisplay := displayFor(e, e.HasFlag("inpatient_markers"))
		key := mergeKey{e.PatientScopeID(), dateDisplay, typeDisplay, provider, factsKey(e.Facts)}

		if existing, ok := merged[key]; ok {
			existing.Facts = append(existing.Facts, factTexts(e.Facts)...)
			existing.SourcePageNumbers = append(existing.SourcePageNumbers, e.SourcePageNumbers...)
			if e.Confidence > existing.Confidence {
				existing.Confidence = e.Confidence
			}
			continue
		}

		entry := &domain.ChronologyProjectionEntry{
			EventID:           e.EventID,
			DateDisplay:       dateDisplay,
			SortDate:          e.Date.SortKey(),
			ProviderDisplay:   provider,
			EventTypeDisplay:  typeDisplay,
			PatientLabel:      e.PatientScopeID(),
			Facts:             factTexts(e.Facts),
			Confidence:        e.Confidence,
			SourcePageNumbers: e.SourcePageNumbers,
		}
		merged[key] = entry
		order = append(order, key)
	}

	out := make([]domain.ChronologyProjectionEntry, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SortDate.Equal(out[j].SortDate) {
			return out[i].SortDate.Before(out[j].SortDate)
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}
