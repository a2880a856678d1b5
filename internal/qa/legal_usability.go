package qa

import (
	"regexp"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

var caseTheorySections = []string{"Moat Analysis", "Executive Summary"}
var bannedLowValueSnippet = regexp.MustCompile(`(?i)\b(no new information|see above|n/a|continued)\b`)

// LegalUsability is the component N legal-usability scorer (§4.N).
type LegalUsability struct{}

func (LegalUsability) Name() string { return "LegalUsability" }

func (LegalUsability) Score(reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) domain.QAReport {
	return runRules(legalUsabilityRules, reportText, graph, projection)
}

var legalUsabilityRules = []rule{
	{
		Code: "LU_CASE_THEORY_SECTIONS", Severity: "hard", Hard: true, Penalty: 40,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			var missing []string
			for _, s := range caseTheorySections {
				if !strings.Contains(reportText, s) {
					missing = append(missing, s)
				}
			}
			return len(missing) == 0, missing
		},
	},
	{
		Code: "LU_SOURCE_TO_OUTPUT_CHAIN", Severity: "hard", Hard: true, Penalty: 40,
		Evaluate: func(_ string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if graph == nil {
				return true, nil
			}
			citationIDs := make(map[string]bool, len(graph.Citations))
			for _, c := range graph.Citations {
				citationIDs[c.CitationID] = true
			}
			var broken []string
			for _, e := range graph.Events {
				for _, id := range e.CitationIDs {
					if !citationIDs[id] {
						broken = append(broken, id)
					}
				}
			}
			return len(broken) == 0, broken
		},
	},
	{
		Code: "LU_BANNED_LOW_VALUE_SNIPPETS", Severity: "soft", Penalty: 10,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			if m := bannedLowValueSnippet.FindString(reportText); m != "" {
				return false, []string{m}
			}
			return true, nil
		},
	},
}
