package render

import (
	"testing"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ domain.ArtifactRenderer = CSVRenderer{}
	_ domain.ArtifactRenderer = MarkdownRenderer{}
	_ domain.ArtifactRenderer = PDFRenderer{}
	_ domain.ArtifactRenderer = DOCXRenderer{}
)

func sampleProjection() []domain.ChronologyProjectionEntry {
	return []domain.ChronologyProjectionEntry{
		{EventID: "e1", DateDisplay: "2024-01-01 (time not documented)", EventTypeDisplay: "Office Visit", ProviderDisplay: "Dr. Smith", PatientLabel: "Unknown Patient", Facts: []string{"Chief complaint: back pain"}, Confidence: 80},
	}
}

func TestCSVRendererProducesHeaderAndRow(t *testing.T) {
	out, err := CSVRenderer{}.Render(&domain.EvidenceGraph{}, sampleProjection(), domain.ChecklistResult{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "date,event_type")
	assert.Contains(t, string(out), "Dr. Smith")
}

func TestMarkdownRendererIncludesFixedSections(t *testing.T) {
	out, err := MarkdownRenderer{}.Render(&domain.EvidenceGraph{}, sampleProjection(), domain.ChecklistResult{})
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "# Moat Analysis")
	assert.Contains(t, text, "# Executive Summary")
	assert.Contains(t, text, "# Chronological Medical Timeline")
	assert.Contains(t, text, "Appendix A")
}

func TestDOCXRendererProducesValidZip(t *testing.T) {
	out, err := DOCXRenderer{}.Render(&domain.EvidenceGraph{}, sampleProjection(), domain.ChecklistResult{})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	// A valid zip starts with the "PK" local-file-header signature.
	assert.Equal(t, byte('P'), out[0])
	assert.Equal(t, byte('K'), out[1])
}

func TestPDFRendererProducesNonEmptyOutput(t *testing.T) {
	out, err := PDFRenderer{}.Render(&domain.EvidenceGraph{}, sampleProjection(), domain.ChecklistResult{Pass: true})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestBuildManifestLinksTimelineToCitations(t *testing.T) {
	graph := &domain.EvidenceGraph{
		Events: []domain.Event{{EventID: "e1", CitationIDs: []string{"c1"}}},
	}
	manifest := BuildManifest(sampleProjection(), graph)
	assert.Contains(t, manifest.ChronAnchors, "chron-e1")
	assert.Contains(t, manifest.ForwardLinks["chron-e1"], "citation-c1")
	assert.Contains(t, manifest.BackLinks["citation-c1"], "chron-e1")
}
