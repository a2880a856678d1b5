package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestRunProducesEvidenceGraphAndArtifacts(t *testing.T) {
	run := &domain.Run{RunID: "run-1", Config: domain.DefaultRunConfig()}
	input := Input{
		SourceDocuments: []domain.SourceDocument{{DocumentID: "doc-1", Filename: "records.pdf"}},
		Pages: map[string][]domain.Page{
			"doc-1": {
				{
					PageID: "doc-1-p1", SourceDocumentID: "doc-1", PageNumber: 1,
					Text: "Facility: Riverside Orthopedic Clinic\nDate of Service: 03/14/2024\n" +
						"Patient presents with left shoulder pain. Diagnosis: rotator cuff strain.",
				},
				{
					PageID: "doc-1-p2", SourceDocumentID: "doc-1", PageNumber: 2,
					Text: "Facility: Riverside Orthopedic Clinic\nDate of Service: 05/02/2024\n" +
						"Follow up visit. Impression: improved range of motion, left shoulder.",
				},
			},
		},
	}

	o := NewOrchestrator(testLogger())
	out, err := o.Run(context.Background(), run, input)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.NotEmpty(t, out.EvidenceGraph.Pages)
	assert.NotEmpty(t, out.EvidenceGraph.Documents)
	assert.NotEmpty(t, out.Chronology.Exports.PDF.SHA256)
	assert.NotEmpty(t, out.Chronology.Exports.CSV.SHA256)
	assert.NotEmpty(t, out.Chronology.Exports.DOCX.SHA256)
	assert.Contains(t, []domain.RunStatus{domain.RunSuccess, domain.RunPartial, domain.RunFailed}, out.Run.Status)
	assert.False(t, out.Run.FinishedAt.IsZero())
	assert.NotZero(t, out.Run.Metrics["duration_ms"])
}

func TestRunHandlesEmptyInputWithoutPanicking(t *testing.T) {
	run := &domain.Run{RunID: "run-empty", Config: domain.DefaultRunConfig()}
	o := NewOrchestrator(testLogger())

	out, err := o.Run(context.Background(), run, Input{})
	require.NoError(t, err)
	assert.Empty(t, out.EvidenceGraph.Pages)
	assert.Contains(t, run.Warnings, domain.Warning{Code: domain.WarnEmptyDocument, Message: "no pages acquired for run"})
}

func TestDocumentAnchorDateFindsEarliestTier1(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Date of Service: 06/01/2024\nfollow up"},
		{PageNumber: 2, Text: "Date of Service: 03/01/2024\ninitial visit"},
	}
	anchor := documentAnchorDate(pages)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), anchor.UTC().Truncate(24*time.Hour))
}

func TestProviderForDocumentPicksHighestConfidence(t *testing.T) {
	providers := []domain.Provider{
		{ProviderID: "p1", Confidence: 40},
		{ProviderID: "p2", Confidence: 85},
	}
	assert.Equal(t, "p2", providerForDocument(providers, "doc-1"))
}

func TestProviderForDocumentEmpty(t *testing.T) {
	assert.Equal(t, "", providerForDocument(nil, "doc-1"))
}
