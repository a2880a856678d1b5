// Package claimledger decomposes the chronology projection into atomic,
// scored litigation assertions (domain.ClaimEdge) and selects the Top-10
// case-driving claims for the Moat Analysis section (§3, SPEC_FULL
// claimledger supplement).
package claimledger

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

var materialityWeight = map[domain.ClaimType]int{
	domain.ClaimProcedure:        3,
	domain.ClaimImagingFinding:   3,
	domain.ClaimInjuryDx:         2,
	domain.ClaimMedicationChange: 2,
	domain.ClaimWorkRestriction:  2,
	domain.ClaimTreatmentVisit:   1,
	domain.ClaimSymptom:          1,
	domain.ClaimGapInCare:        2,
	domain.ClaimPreExisting:      1,
}

var (
	workRestrictionPattern = regexp.MustCompile(`(?i)\b(work restriction|unable to work|off work|no work)\b`)
	medicationChangePattern = regexp.MustCompile(`(?i)\b(started|stopped|discontinued|switched|increased|decreased|medication)\b`)
	procedurePattern        = regexp.MustCompile(`(?i)\b(injection|epidural|procedure|surgery)\b`)
	imagingPattern          = regexp.MustCompile(`(?i)\b(mri|ct|x-?ray|impression|radiology|finding)\b`)
	icdPattern              = regexp.MustCompile(`\b[A-TV-Z][0-9]{2}(?:\.[0-9A-TV-Z]{1,4})?\b`)
	ptDxPattern             = regexp.MustCompile(`(?i)\b(cervicalgia|lumbago|cervical strain|lumbar strain|thoracic strain|radiculopathy|sciatica|myofascial pain|whiplash|sprain|strain|muscle spasm)\b`)
	dxPattern               = regexp.MustCompile(`(?i)\b(diagnosis|dx|assessment|impression|problem list|a/p|treatment diagnosis|medical diagnosis|primary dx|secondary dx|radiculopathy|strain|sprain|herniation|stenosis)\b`)
	preExistingPattern      = regexp.MustCompile(`(?i)\b(pre-existing|chronic|degenerative|prior)\b`)
	symptomPattern          = regexp.MustCompile(`(?i)\b(pain|numbness|tingling|spasm|weakness|decreased rom)\b`)
	degenerativePattern     = regexp.MustCompile(`(?i)\b(degenerative|chronic|age-related|spondylosis)\b`)
	acutePattern            = regexp.MustCompile(`(?i)\b(acute|post[- ]?traumatic|post[- ]?mva|after mva)\b`)
	imagingFindingPattern   = regexp.MustCompile(`(?i)\b(impression|finding|abnormal|fracture|tear|herniation|stenosis)\b`)
)

// claimTypeForFact mirrors the teacher's rule cascade: the first matching
// pattern wins, checked most-specific first.
func claimTypeForFact(eventTypeDisplay, fact string) domain.ClaimType {
	low := strings.ToLower(fact)
	et := strings.ToLower(eventTypeDisplay)
	switch {
	case workRestrictionPattern.MatchString(low):
		return domain.ClaimWorkRestriction
	case medicationChangePattern.MatchString(low):
		return domain.ClaimMedicationChange
	case strings.Contains(et, "procedure") || strings.Contains(et, "surgery") || procedurePattern.MatchString(low):
		return domain.ClaimProcedure
	case strings.Contains(et, "imaging") || imagingPattern.MatchString(low):
		return domain.ClaimImagingFinding
	case icdPattern.MatchString(fact) || ptDxPattern.MatchString(low):
		return domain.ClaimInjuryDx
	case dxPattern.MatchString(low):
		return domain.ClaimInjuryDx
	case preExistingPattern.MatchString(low):
		return domain.ClaimPreExisting
	case symptomPattern.MatchString(low):
		return domain.ClaimSymptom
	default:
		return domain.ClaimTreatmentVisit
	}
}

func supportScore(claimType domain.ClaimType, assertion string, flags map[string]bool) int {
	low := strings.ToLower(assertion)
	score := 0
	switch claimType {
	case domain.ClaimImagingFinding:
		if imagingFindingPattern.MatchString(low) {
			score += 3
		}
	case domain.ClaimInjuryDx:
		score += 2
	case domain.ClaimProcedure:
		score += 2
	case domain.ClaimSymptom:
		score += 1
	}
	if flags["laterality_conflict"] || flags["timing_inconsistency"] {
		score -= 3
	}
	if flags["degenerative_language"] {
		score -= 2
	}
	if flags["treatment_gap"] {
		score -= 2
	}
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func extractTokens(text string) []string {
	tokens := regexp.MustCompile(`[a-z0-9]+`).FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, 6)
	for _, t := range tokens {
		if len(t) > 2 {
			out = append(out, t)
		}
		if len(out) == 6 {
			break
		}
	}
	if len(out) == 0 {
		return []string{"none"}
	}
	return out
}

func stableID(parts ...string) string {
	h := sha1.New()
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))[:24]
}

func cleanAssertion(text string) string {
	out := strings.TrimSpace(text)
	out = regexp.MustCompile(`\s{2,}`).ReplaceAllString(out, " ")
	if len(out) > 220 {
		out = out[:220]
	}
	return out
}

// BuildClaimEdges decomposes a chronology projection, its gaps, and the
// underlying raw events into atomic ClaimEdge assertions, flags internal
// contradictions (laterality conflicts), and deduplicates by stable ID.
func BuildClaimEdges(projection []domain.ChronologyProjectionEntry, gaps []domain.Gap, events []domain.Event) []domain.ClaimEdge {
	var rows []domain.ClaimEdge
	type regionKey struct{ date, region string }
	bySide := make(map[regionKey]map[string]bool)

	for _, entry := range projection {
		if len(entry.Facts) == 0 {
			continue
		}
		dateStr := entry.SortDate.Format("2006-01-02")
		provider := entry.ProviderDisplay
		if provider == "" {
			provider = "Unknown"
		}
		citations := splitCitations(entry.CitationDisplay)

		for _, fact := range entry.Facts {
			claimType := claimTypeForFact(entry.EventTypeDisplay, fact)
			flags := make(map[string]bool)
			low := strings.ToLower(fact)
			if entry.SortDate.IsZero() {
				flags["timing_ambiguous"] = true
			}
			if degenerativePattern.MatchString(low) && !acutePattern.MatchString(low) {
				flags["degenerative_language"] = true
			}
			side := ""
			if strings.Contains(low, "left") {
				side = "left"
			} else if strings.Contains(low, "right") {
				side = "right"
			}
			region := extractBodyRegion(low)
			if side != "" {
				key := regionKey{dateStr, region}
				if bySide[key] == nil {
					bySide[key] = make(map[string]bool)
				}
				bySide[key][side] = true
			}

			assertion := cleanAssertion(fact)
			if assertion == "" {
				continue
			}

			base := supportScore(claimType, assertion, flags)
			weight := materialityWeight[claimType]
			if weight == 0 {
				weight = 1
			}
			flagList := flagSlice(flags)
			id := stableID(append([]string{string(claimType), dateStr, region, strings.ToLower(provider)}, extractTokens(assertion)...)...)
			rows = append(rows, domain.ClaimEdge{
				ID:                id,
				EventID:           entry.EventID,
				PatientLabel:      entry.PatientLabel,
				ClaimType:         claimType,
				Date:              entry.SortDate,
				BodyRegion:        region,
				Provider:          provider,
				Assertion:         assertion,
				Citations:         capStrings(citations, 3),
				SupportScore:      base,
				Flags:             flagList,
				MaterialityWeight: weight,
			})
		}
	}

	for i := range rows {
		key := regionKey{rows[i].Date.Format("2006-01-02"), rows[i].BodyRegion}
		sides := bySide[key]
		if sides["left"] && sides["right"] {
			rows[i].Flags = appendFlag(rows[i].Flags, "laterality_conflict")
			rows[i].SupportScore -= 3
			if rows[i].SupportScore < 0 {
				rows[i].SupportScore = 0
			}
		}
	}

	for _, gap := range gaps {
		if gap.DurationDays < 45 {
			continue
		}
		dateStr := gap.StartDate.Format("2006-01-02")
		assertion := gapAssertion(gap.DurationDays)
		score := 3
		if gap.DurationDays >= 90 {
			score = 5
		}
		id := stableID("GAP_IN_CARE", dateStr, gap.GapID)
		rows = append(rows, domain.ClaimEdge{
			ID:                id,
			EventID:           "gap:" + gap.GapID,
			PatientLabel:      domain.UnknownPatientLabel,
			ClaimType:         domain.ClaimGapInCare,
			Date:              gap.StartDate,
			BodyRegion:        "general",
			Provider:          "Unknown",
			Assertion:         assertion,
			Citations:         nil,
			SupportScore:      score,
			Flags:             []string{"treatment_gap"},
			MaterialityWeight: materialityWeight[domain.ClaimGapInCare],
		})
	}

	rows = append(rows, rowsFromRawEvents(events)...)

	dedup := make(map[string]domain.ClaimEdge, len(rows))
	for _, row := range rows {
		prev, ok := dedup[row.ID]
		if !ok {
			dedup[row.ID] = row
			continue
		}
		if row.SelectionScore() > prev.SelectionScore() {
			dedup[row.ID] = row
		} else if row.SelectionScore() == prev.SelectionScore() && len(row.Citations) > len(prev.Citations) {
			dedup[row.ID] = row
		}
	}

	final := make([]domain.ClaimEdge, 0, len(dedup))
	for _, row := range dedup {
		final = append(final, row)
	}
	sort.Slice(final, func(i, j int) bool {
		a, b := final[i], final[j]
		ad, bd := a.Date.Format("2006-01-02"), b.Date.Format("2006-01-02")
		if ad != bd {
			return ad < bd
		}
		if a.SelectionScore() != b.SelectionScore() {
			return a.SelectionScore() > b.SelectionScore()
		}
		if a.ClaimType != b.ClaimType {
			return a.ClaimType < b.ClaimType
		}
		return a.ID < b.ID
	})
	return final
}

func rowsFromRawEvents(events []domain.Event) []domain.ClaimEdge {
	var rows []domain.ClaimEdge
	for _, evt := range events {
		dateStr := "unknown"
		sortDate := evt.Date.SortKey()
		if !sortDate.IsZero() {
			dateStr = sortDate.Format("2006-01-02")
		}
		provider := evt.ProviderID
		if provider == "" {
			provider = "Unknown"
		}
		citations := pageCitations(evt.SourcePageNumbers)

		emit := func(text string, claimType domain.ClaimType) {
			assertion := cleanAssertion(text)
			if assertion == "" {
				return
			}
			low := strings.ToLower(assertion)
			flags := make(map[string]bool)
			if claimType == domain.ClaimPreExisting {
				flags["pre_existing_overlap"] = true
			}
			if degenerativePattern.MatchString(low) && !acutePattern.MatchString(low) {
				flags["degenerative_language"] = true
			}
			region := extractBodyRegion(low)
			score := supportScore(claimType, assertion, flags)
			weight := materialityWeight[claimType]
			if weight == 0 {
				weight = 1
			}
			id := stableID(append([]string{string(claimType), dateStr, region, strings.ToLower(provider)}, extractTokens(assertion)...)...)
			rows = append(rows, domain.ClaimEdge{
				ID:                id,
				EventID:           evt.EventID,
				PatientLabel:      "See Patient Header",
				ClaimType:         claimType,
				Date:              sortDate,
				BodyRegion:        region,
				Provider:          provider,
				Assertion:         assertion,
				Citations:         citations,
				SupportScore:      score,
				Flags:             flagSlice(flags),
				MaterialityWeight: weight,
			})
		}

		for _, dx := range evt.Diagnoses {
			emit(dx, domain.ClaimInjuryDx)
		}
		for _, proc := range evt.Procedures {
			emit(proc, domain.ClaimProcedure)
		}
		for _, fact := range evt.Facts {
			emit(fact.Text, claimTypeForFact(string(evt.EventType), fact.Text))
		}
		if evt.Imaging != nil && evt.Imaging.Impression != "" {
			emit(evt.Imaging.Impression, domain.ClaimImagingFinding)
		}
	}
	return rows
}

func gapAssertion(durationDays int) string {
	return "Treatment gap of " + itoa(durationDays) + " days identified."
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func splitCitations(display string) []string {
	if display == "" {
		return nil
	}
	parts := strings.Split(display, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pageCitations(pages []int) []string {
	if len(pages) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var out []string
	for _, p := range pages {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, "p. "+itoa(p))
		if len(out) == 3 {
			break
		}
	}
	return out
}

func capStrings(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}

func flagSlice(flags map[string]bool) []string {
	if len(flags) == 0 {
		return nil
	}
	out := make([]string, 0, len(flags))
	for f := range flags {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func appendFlag(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	out := append(append([]string{}, flags...), flag)
	sort.Strings(out)
	return out
}
