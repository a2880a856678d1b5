package qa

import (
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

var requiredHeaders = []string{"Executive Summary", "Chronological Medical Timeline"}

// AttorneyReadiness is the component N attorney-readiness scorer (§4.N).
type AttorneyReadiness struct{}

func (AttorneyReadiness) Name() string { return "AttorneyReadiness" }

func (AttorneyReadiness) Score(reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) domain.QAReport {
	return runRules(attorneyReadinessRules, reportText, graph, projection)
}

var attorneyReadinessRules = []rule{
	{
		Code: "AR_REQUIRED_HEADERS", Severity: "hard", Hard: true, Penalty: 40,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			var missing []string
			for _, h := range requiredHeaders {
				if !strings.Contains(reportText, h) {
					missing = append(missing, h)
				}
			}
			return len(missing) == 0, missing
		},
	},
	{
		Code: "AR_MINIMUM_ROW_COUNT", Severity: "hard", Hard: true, Penalty: 30,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			return len(projection) > 0, nil
		},
	},
	{
		Code: "AR_UNCITED_ROW_RATIO", Severity: "soft", Penalty: 10,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			uncited := 0
			for _, e := range projection {
				if e.CitationDisplay == "" {
					uncited++
				}
			}
			return float64(uncited)/float64(len(projection)) <= 0.15, nil
		},
	},
	{
		Code: "AR_FACT_DENSITY", Severity: "soft", Penalty: 10,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			total := 0
			for _, e := range projection {
				total += len(e.Facts)
			}
			return float64(total)/float64(len(projection)) >= 1.0, nil
		},
	},
}
