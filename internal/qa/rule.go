// Package qa implements the three independent component N quality scorers
// (LUQA, Attorney-Readiness, Legal-Usability), each a registered table of
// rules evaluated against the rendered report text and evidence graph
// (§4.N).
package qa

import "github.com/citeline/chronology-core/internal/domain"

// rule is one registered gate, mirroring the teacher's ACMGRule shape:
// a stable code, severity, and an evaluator closure that reports pass/fail
// plus supporting examples for a failure.
type rule struct {
	Code     string
	Severity string
	Hard     bool
	Penalty  int
	Evaluate func(reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (pass bool, examples []string)
}

func runRules(rules []rule, reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) domain.QAReport {
	score := 100
	hardFailure := false
	var failures []domain.QAFailure

	for _, r := range rules {
		pass, examples := r.Evaluate(reportText, graph, projection)
		if pass {
			continue
		}
		failures = append(failures, domain.QAFailure{Code: r.Code, Severity: r.Severity, Message: r.Code, Examples: examples})
		score -= r.Penalty
		if r.Hard {
			hardFailure = true
		}
	}

	if score < 0 {
		score = 0
	}
	if hardFailure && score > 60 {
		score = 60
	}

	return domain.QAReport{
		Pass:     len(failures) == 0,
		Score:    score,
		Failures: failures,
	}
}
