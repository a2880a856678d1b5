// Package gaps implements the component J treatment-continuity gap
// detector: per-patient-scope sort, threshold detection, rationale
// tagging, and routine-gap collapsing (§4.J).
package gaps

import (
	"fmt"
	"sort"

	"github.com/citeline/chronology-core/internal/domain"
)

func byPatientScope(events []domain.Event) map[string][]domain.Event {
	scopes := make(map[string][]domain.Event)
	for _, e := range events {
		if !e.Date.IsFinite() {
			continue
		}
		scope := e.PatientScopeID()
		scopes[scope] = append(scopes[scope], e)
	}
	return scopes
}

// rationale assigns the §4.J tag based on the two bracketing events.
func rationale(prev, next domain.Event) string {
	switch {
	case prev.EventType == domain.EventHospitalDischarge:
		return "post_admission_followup_missing"
	case prev.EventType == domain.EventProcedure:
		return "post_procedure_followup_missing"
	case prev.HasFlag("hospice") || next.HasFlag("hospice"):
		return "hospice_continuity_break"
	case prev.EventType == domain.EventPTVisit && next.EventType != domain.EventPTVisit:
		return "rehab_snf_transition_gap"
	default:
		return "routine_continuity_gap"
	}
}

// Detect finds per-patient-scope gaps across events whose adjacent interval
// meets or exceeds thresholdDays, then collapses runs of 3+ consecutive
// routine gaps with near-equal duration.
func Detect(events []domain.Event, thresholdDays int) []domain.Gap {
	var all []domain.Gap
	for scope, scoped := range byPatientScope(events) {
		sort.Slice(scoped, func(i, j int) bool {
			return scoped[i].Date.SortKey().Before(scoped[j].Date.SortKey())
		})
		var raw []domain.Gap
		for i := 0; i+1 < len(scoped); i++ {
			prev, next := scoped[i], scoped[i+1]
			duration := int(next.Date.SortKey().Sub(prev.Date.SortKey()).Hours() / 24)
			if duration < thresholdDays {
				continue
			}
			raw = append(raw, domain.Gap{
				GapID:           fmt.Sprintf("%s-gap-%d", scope, i),
				StartDate:       prev.Date.SortKey(),
				EndDate:         next.Date.SortKey(),
				DurationDays:    duration,
				ThresholdDays:   thresholdDays,
				RationaleTag:    rationale(prev, next),
				RelatedEventIDs: [2]string{prev.EventID, next.EventID},
			})
		}
		all = append(all, collapseRoutine(raw)...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartDate.Before(all[j].StartDate) })
	return all
}

// collapseRoutine merges runs of 3 or more consecutive routine_continuity_gap
// entries whose durations differ by at most 3 days into one collapsed gap.
func collapseRoutine(gapsIn []domain.Gap) []domain.Gap {
	var out []domain.Gap
	i := 0
	for i < len(gapsIn) {
		if gapsIn[i].RationaleTag != "routine_continuity_gap" {
			out = append(out, gapsIn[i])
			i++
			continue
		}
		j := i + 1
		for j < len(gapsIn) && gapsIn[j].RationaleTag == "routine_continuity_gap" &&
			abs(gapsIn[j].DurationDays-gapsIn[j-1].DurationDays) <= 3 {
			j++
		}
		run := gapsIn[i:j]
		if len(run) >= 3 {
			merged := run[0]
			merged.EndDate = run[len(run)-1].EndDate
			merged.DurationDays = int(merged.EndDate.Sub(merged.StartDate).Hours() / 24)
			merged.RationaleTag = "routine_continuity_gap_collapsed"
			merged.RelatedEventIDs = [2]string{run[0].RelatedEventIDs[0], run[len(run)-1].RelatedEventIDs[1]}
			merged.Collapsed = true
			merged.CollapsedCount = len(run)
			out = append(out, merged)
		} else {
			out = append(out, run...)
		}
		i = j
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
