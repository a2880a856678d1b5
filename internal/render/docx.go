package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

// DOCXRenderer writes a minimal flat OOXML word-processing document: no
// tables or styles, one paragraph per line, matching the fixed §4.P section
// order. The pack carries no DOCX library at any depth, so the handful of
// OOXML parts a flat document needs are hand-assembled from the stdlib
// archive/zip + encoding/xml packages already used elsewhere in the stack.
type DOCXRenderer struct{}

func (DOCXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func (DOCXRenderer) Render(graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry, checklist domain.ChecklistResult) ([]byte, error) {
	var body strings.Builder
	writeHeading(&body, "Moat Analysis")
	writeParagraph(&body, moatAnalysisText(graph, projection))
	writeHeading(&body, "Executive Summary")
	writeParagraph(&body, executiveSummaryText(projection))
	writeHeading(&body, "Chronological Medical Timeline")
	for _, e := range projection {
		writeHeading(&body, fmt.Sprintf("%s — %s", e.DateDisplay, e.EventTypeDisplay))
		writeParagraph(&body, fmt.Sprintf("Provider: %s   Patient: %s", e.ProviderDisplay, e.PatientLabel))
		for _, fact := range e.Facts {
			writeParagraph(&body, "- "+fact)
		}
	}
	for _, letter := range appendixLetters {
		writeHeading(&body, "Medical Record Appendix "+letter)
	}

	document := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>%s</w:body>
</w:document>`, body.String())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for name, content := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":          rootRelsXML,
		"word/document.xml":    document,
	} {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeading(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeParagraph(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func escapeXML(text string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(text)); err != nil {
		return text
	}
	return b.String()
}
