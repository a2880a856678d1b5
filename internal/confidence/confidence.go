// Package confidence implements the component I deterministic point-scoring
// confidence model (§4.I).
package confidence

import "github.com/citeline/chronology-core/internal/domain"

func dateTierPoints(source domain.DateSource) int {
	switch source {
	case domain.DateTier1:
		return 35
	case domain.DateTier2:
		return 20
	case domain.DatePropagated, domain.DateAnchor:
		return 15
	default:
		return 0
	}
}

func narrativeFactCount(facts []domain.Fact) int {
	n := 0
	for _, f := range facts {
		if domain.NarrativeFactKinds[f.Kind] {
			n++
		}
	}
	return n
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Score computes the §4.I point total for one event.
func Score(e domain.Event) int {
	score := dateTierPoints(e.Date.Source)

	if e.ProviderID != "" {
		score += 20
	}
	if domain.HighValueEventTypes[e.EventType] {
		score += 15
	}

	narrativeBonus := 5 * narrativeFactCount(e.Facts)
	if narrativeBonus > 15 {
		narrativeBonus = 15
	}
	score += narrativeBonus

	if len(e.Facts) >= 3 {
		score += 5
	}
	if len(e.CitationIDs) >= 2 {
		score += 5
	}
	if len(e.SourcePageNumbers) > 1 {
		score += 5
	}

	return clamp(score)
}

// LowConfidenceFlag is the flag key set on events scoring below the
// configured export threshold.
const LowConfidenceFlag = "low_confidence"

// ScoreAll assigns Confidence to every event and flags those below minExport.
func ScoreAll(events []domain.Event, minExport int) {
	for i := range events {
		events[i].Confidence = Score(events[i])
		if events[i].Confidence < minExport {
			events[i].SetFlag(LowConfidenceFlag)
		}
	}
}
