// Package dedup implements the component H event deduplicator: a composite
// identity key over (date, provider, event type, fact fingerprint) with a
// deterministic collision-resolution tie-break (§4.H).
package dedup

import (
	"crypto/sha1"
	"fmt"
	"sort"

	"github.com/citeline/chronology-core/internal/domain"
)

// Key returns the composite dedup identity for one event.
func Key(e domain.Event) string {
	fingerprints := make([]string, len(e.Facts))
	for i, f := range e.Facts {
		fingerprints[i] = string(f.Kind) + "|" + f.Text
	}
	sort.Strings(fingerprints)

	h := sha1.New()
	for _, fp := range fingerprints {
		h.Write([]byte(fp))
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%s|%s|%s|%x", e.Date.SortKey().Format("2006-01-02T15:04:05"), e.ProviderID, e.EventType, h.Sum(nil))
}

// Dedupe collapses events sharing a Key, keeping the richer event on
// collision: more facts wins; ties break by higher confidence, then by
// lexicographically smaller event_id for full determinism.
func Dedupe(events []domain.Event) []domain.Event {
	winners := make(map[string]domain.Event)
	order := make([]string, 0, len(events))

	for _, e := range events {
		k := Key(e)
		cur, ok := winners[k]
		if !ok {
			winners[k] = e
			order = append(order, k)
			continue
		}
		if better(e, cur) {
			winners[k] = e
		}
	}

	out := make([]domain.Event, 0, len(order))
	for _, k := range order {
		out = append(out, winners[k])
	}
	return out
}

func better(candidate, incumbent domain.Event) bool {
	if len(candidate.Facts) != len(incumbent.Facts) {
		return len(candidate.Facts) > len(incumbent.Facts)
	}
	if candidate.Confidence != incumbent.Confidence {
		return candidate.Confidence > incumbent.Confidence
	}
	return candidate.EventID < incumbent.EventID
}
