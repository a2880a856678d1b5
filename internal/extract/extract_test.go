package extract

import (
	"testing"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicalExtractsFactsAndDiagnoses(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Date of Service: 01/02/2024\nChief Complaint: low back pain\nAssessment: lumbar strain M54.5"},
	}
	events, citations := Clinical("doc-1", "prov-1", pages, time.Time{})
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOfficeVisit, events[0].EventType)
	assert.NotEmpty(t, events[0].Facts)
	assert.Contains(t, events[0].Diagnoses, "M54.5")
	assert.NotEmpty(t, citations)
}

func TestImagingParsesModalityAndImpression(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Date of Service: 01/05/2024\nMRI Lumbar Spine\nImpression: disc herniation at L4-L5"},
	}
	events, _ := Imaging("doc-1", "prov-1", pages, time.Time{})
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Imaging)
	assert.Equal(t, "MRI", events[0].Imaging.Modality)
	assert.Contains(t, events[0].Imaging.Impression, "disc herniation")
}

func TestBillingParsesAmountAndTabularFlag(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Date of Service: 02/01/2024\nCharge\t$1,250.00\nCPT 99213\nBalance\t$250.00"},
	}
	events, _ := Billing("doc-1", "prov-1", pages, time.Time{})
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Billing)
	assert.Equal(t, int64(125000), events[0].Billing.AmountCents)
	assert.True(t, events[0].HasFlag("tabular_billing_page"))
}

func TestDischargeMergesAdmissionAndDischargeDates(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Admit Date: 01/01/2024\nChief Complaint: chest pain"},
		{PageNumber: 2, Text: "Discharge Date: 01/05/2024\nPlan: follow up with PCP"},
	}
	events, _ := Discharge("doc-1", "prov-1", pages, time.Time{})
	require.Len(t, events, 1)
	assert.Equal(t, domain.DateKindRange, events[0].Date.Kind)
	assert.Equal(t, []int{1, 2}, events[0].SourcePageNumbers)
}

func TestPTAggregateSpansCourseOfTherapy(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Date of Service: 01/01/2024\nRange of motion 90 deg flexion"},
		{PageNumber: 2, Text: "Date of Service: 01/08/2024\nStrength 4/5 quadriceps"},
	}
	events, _ := PT("doc-1", "prov-1", pages, time.Time{}, domain.PTModeAggregate)
	require.Len(t, events, 1)
	assert.Equal(t, domain.DateKindRange, events[0].Date.Kind)
}

func TestPTPerVisitEmitsOneEventPerPage(t *testing.T) {
	pages := []domain.Page{
		{PageNumber: 1, Text: "Date of Service: 01/01/2024\nRange of motion 90 deg flexion"},
		{PageNumber: 2, Text: "Date of Service: 01/08/2024\nStrength 4/5 quadriceps"},
	}
	events, _ := PT("doc-1", "prov-1", pages, time.Time{}, domain.PTModePerVisit)
	assert.Len(t, events, 2)
}

func TestForDocumentDispatchesByDeclaredType(t *testing.T) {
	doc := domain.Document{SourceDocumentID: "doc-1", DeclaredType: domain.PageLab}
	pages := []domain.Page{{PageNumber: 1, Text: "Date of Service: 01/01/2024\nHGB: 13.2 g/dL"}}
	events, _ := ForDocument(doc, pages, "prov-1", time.Time{}, domain.PTModeAggregate)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventLabResult, events[0].EventType)
}
