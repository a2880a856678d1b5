// Package claimguard implements the component M narrative claim guard:
// parsing "field: value" claim lines, requiring each claimed term to be
// anchored on at least two source pages, and scrubbing unanchored claims
// from the rendered narrative (§4.M).
package claimguard

import (
	"regexp"
	"strings"
)

// guardedFields are the narrative line labels subject to anchor-count review.
var guardedFields = map[string]bool{
	"primary injuries":  true,
	"major complications": true,
}

var fieldLinePattern = regexp.MustCompile(`(?im)^\s*([A-Za-z ]+)\s*:\s*(.+)$`)
var bulletLinePattern = regexp.MustCompile(`(?m)^\s*[-*•]\s*.+$`)

const scrubMessage = "Insufficiently anchored to source documents for this review and has been omitted."

// Result is the §4.M claim_guard_report.json contract.
type Result struct {
	AcceptedClaims []string `json:"accepted_claims"`
	RejectedClaims []string `json:"rejected_claims"`
}

// AnchorCounter reports how many distinct pages mention a claim term.
type AnchorCounter func(term string) int

func splitTerms(value string) []string {
	raw := regexp.MustCompile(`[,;]`).Split(value, -1)
	var out []string
	for _, r := range raw {
		if t := strings.TrimSpace(r); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Review scans narrativeText for guarded "field: value" lines, checks each
// comma/semicolon-separated term's anchor count, and returns a scrubbed copy
// of the text alongside the accepted/rejected claim lists.
//
// This is a two-pass algorithm, mirroring apply_claim_guard_to_narrative:
// pass 1 rewrites only the guarded field:value lines themselves and records
// every rejected term; pass 2 then scrubs *any* line, guarded or not, that
// still mentions a rejected term, leaving every other line untouched.
func Review(narrativeText string, anchors AnchorCounter) (scrubbed string, result Result) {
	lines := strings.Split(narrativeText, "\n")
	var out []string
	rejectedTerms := make(map[string]bool)

	for _, line := range lines {
		m := fieldLinePattern.FindStringSubmatch(line)
		if m == nil || !guardedFields[strings.ToLower(strings.TrimSpace(m[1]))] {
			out = append(out, line)
			continue
		}

		var kept []string
		for _, term := range splitTerms(m[2]) {
			if anchors(term) >= 2 {
				kept = append(kept, term)
				result.AcceptedClaims = append(result.AcceptedClaims, term)
			} else {
				result.RejectedClaims = append(result.RejectedClaims, term)
				rejectedTerms[strings.ToLower(term)] = true
			}
		}

		if len(kept) == 0 {
			out = append(out, m[1]+": "+scrubMessage)
		} else {
			out = append(out, m[1]+": "+strings.Join(kept, ", "))
		}
	}

	if len(rejectedTerms) == 0 {
		return strings.Join(out, "\n"), result
	}

	scrubbedLines := make([]string, 0, len(out))
	for _, line := range out {
		low := strings.ToLower(line)
		mentioned := false
		for term := range rejectedTerms {
			if term != "" && strings.Contains(low, term) {
				mentioned = true
				break
			}
		}
		if !mentioned {
			scrubbedLines = append(scrubbedLines, line)
			continue
		}
		if bulletLinePattern.MatchString(line) {
			continue
		}
		if m := fieldLinePattern.FindStringSubmatch(line); m != nil {
			scrubbedLines = append(scrubbedLines, m[1]+": "+scrubMessage)
			continue
		}
		// a rejected term surfaced on a line that is neither a bullet nor a
		// field:value line; drop it rather than leak the term verbatim.
	}

	return strings.Join(scrubbedLines, "\n"), result
}
