package render

import (
	"fmt"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

// MarkdownRenderer renders the §4.P fixed section order as plain Markdown.
type MarkdownRenderer struct{}

func (MarkdownRenderer) ContentType() string { return "text/markdown" }

func (MarkdownRenderer) Render(graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry, checklist domain.ChecklistResult) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Moat Analysis\n\n")
	b.WriteString(moatAnalysisText(graph, projection))
	b.WriteString("\n\n# Executive Summary\n\n")
	b.WriteString(executiveSummaryText(projection))
	b.WriteString("\n\n# Chronological Medical Timeline\n\n")
	for _, e := range projection {
		b.WriteString(renderRowMarkdown(e))
	}
	b.WriteString("\n# Medical Record Appendix\n\n")
	for _, letter := range appendixLetters {
		b.WriteString(fmt.Sprintf("## Appendix %s\n\n", letter))
	}

	return []byte(b.String()), nil
}

var appendixLetters = []string{"A", "B", "C", "D", "E", "F"}

func moatAnalysisText(graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d documents, %d events, %d projected entries analyzed.\n", len(graph.Documents), len(graph.Events), len(projection))
	if len(graph.ClaimEdges) == 0 {
		return b.String()
	}
	b.WriteString("\nCase-driving claims:\n\n")
	for _, c := range graph.ClaimEdges {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", c.ClaimType, c.Assertion, c.Provider)
	}
	return b.String()
}

func executiveSummaryText(projection []domain.ChronologyProjectionEntry) string {
	if len(projection) == 0 {
		return "No chronology entries were produced from the source documents.\n"
	}
	return fmt.Sprintf("This chronology spans %d entries from %s to %s.\n", len(projection), projection[0].DateDisplay, projection[len(projection)-1].DateDisplay)
}

func renderRowMarkdown(e domain.ChronologyProjectionEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s — %s\n\n", e.DateDisplay, e.EventTypeDisplay)
	fmt.Fprintf(&b, "**Provider:** %s  \n**Patient:** %s  \n**Confidence:** %d\n\n", e.ProviderDisplay, e.PatientLabel, e.Confidence)
	for _, fact := range e.Facts {
		fmt.Fprintf(&b, "- %s\n", fact)
	}
	b.WriteString("\n")
	return b.String()
}
