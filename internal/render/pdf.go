package render

import (
	"bytes"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer renders the litigation-grade PDF in the fixed §4.P section
// order: Moat Analysis, Executive Summary, Chronological Medical Timeline,
// then the lettered Medical Record Appendix. Each timeline row gets an
// internal link target, but no link in the document points at it; the
// anchor names and forward/back links of render_manifest.json come from
// BuildManifest in manifest.go, which does not read the PDF.
type PDFRenderer struct{}

func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Render(graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry, checklist domain.ChecklistResult) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(40, 40, 40)
	pdf.SetAutoPageBreak(true, 40)

	if !checklist.Pass {
		renderFailCoverPage(pdf, checklist)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 24, "Moat Analysis")
	pdf.Ln(30)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 14, moatAnalysisText(graph, projection), "", "", false)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 24, "Executive Summary")
	pdf.Ln(30)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 14, executiveSummaryText(projection), "", "", false)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 24, "Chronological Medical Timeline")
	pdf.Ln(30)
	for _, e := range projection {
		anchor := pdf.AddLink()
		pdf.SetLink(anchor, 0, -1)
		renderRowPDF(pdf, e)
	}

	for _, letter := range appendixLetters {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Cellf(0, 24, "Medical Record Appendix %s", letter)
		pdf.Ln(30)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderFailCoverPage(pdf *gofpdf.Fpdf, checklist domain.ChecklistResult) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(180, 0, 0)
	pdf.Cell(0, 28, "LITIGATION REVIEW FAILED")
	pdf.Ln(36)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, f := range checklist.Failures {
		pdf.MultiCell(0, 14, f.Code+": "+f.Message, "", "", false)
	}
}

func renderRowPDF(pdf *gofpdf.Fpdf, e domain.ChronologyProjectionEntry) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 16, e.DateDisplay+" — "+e.EventTypeDisplay, "", "", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 13, "Provider: "+e.ProviderDisplay+"   Patient: "+e.PatientLabel, "", "", false)
	for _, fact := range e.Facts {
		pdf.MultiCell(0, 13, "- "+fact, "", "", false)
	}
	pdf.Ln(8)
}
