// Package extract implements the component F event extractors: clinical,
// imaging, PT, billing, lab, discharge, and operative. Each extractor scans
// pages whose classified type matches its domain and produces cited Events.
package extract

import (
	"regexp"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

// factPattern pairs a FactKind with the regex family that detects it.
type factPattern struct {
	kind    domain.FactKind
	pattern *regexp.Regexp
}

var sharedFactPatterns = []factPattern{
	{domain.FactChiefComplaint, regexp.MustCompile(`(?im)^\s*chief complaint\s*:?\s*(.+)$`)},
	{domain.FactFinding, regexp.MustCompile(`(?im)^\s*history of present illness\s*:?\s*(.+)$`)},
	{domain.FactAssessment, regexp.MustCompile(`(?im)^\s*assessment\s*:?\s*(.+)$`)},
	{domain.FactPlan, regexp.MustCompile(`(?im)^\s*plan\s*:?\s*(.+)$`)},
	{domain.FactImpression, regexp.MustCompile(`(?im)^\s*impression\s*:?\s*(.+)$`)},
	{domain.FactMedication, regexp.MustCompile(`(?im)\b([A-Z][a-z]+(?:in|ol|ide|azole|cillin|pril|statin)?\s+\d+(?:\.\d+)?\s*mg\b[^\n]*)`)},
	{domain.FactROMValue, regexp.MustCompile(`(?im)\b(range of motion[^\n]*\d+\s*(?:deg|°)[^\n]*)`)},
	{domain.FactStrengthGrade, regexp.MustCompile(`(?im)\b(strength[^\n]*\d/5[^\n]*)`)},
	{domain.FactPainScore, regexp.MustCompile(`(?im)\b(pain[^\n]*\d{1,2}\s*/\s*10[^\n]*)`)},
	{domain.FactFinding, regexp.MustCompile(`(?im)\b(bp\s*\d{2,3}/\d{2,3}[^\n]*|temp\s*\d{2,3}(?:\.\d)?[^\n]*|hr\s*\d{2,3}[^\n]*)`)},
	{domain.FactRestriction, regexp.MustCompile(`(?im)\b(work status[^\n]*|off work[^\n]*|return to work[^\n]*|light duty[^\n]*)`)},
	{domain.FactProcedureNote, regexp.MustCompile(`(?im)\b(procedure performed\s*:?\s*.+)$`)},
}

// extractFacts runs the shared fact-pattern families against page text,
// producing one Fact and one Citation per match. The newCitation callback
// lets each domain extractor control how its citations are built.
func extractFacts(page domain.Page, patterns []factPattern, newCitation func(snippet string) domain.Citation) ([]domain.Fact, []domain.Citation) {
	var facts []domain.Fact
	var citations []domain.Citation

	seen := make(map[string]bool)
	for _, fp := range patterns {
		for _, m := range fp.pattern.FindAllStringSubmatch(page.Text, -1) {
			snippet := strings.TrimSpace(m[0])
			if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
				snippet = strings.TrimSpace(m[0])
			}
			if snippet == "" || seen[snippet] {
				continue
			}
			seen[snippet] = true

			citation := newCitation(snippet)
			citations = append(citations, citation)
			facts = append(facts, domain.Fact{
				Text:       snippet,
				Kind:       fp.kind,
				Verbatim:   true,
				CitationID: citation.CitationID,
			})
		}
	}
	return facts, citations
}
