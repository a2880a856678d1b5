package render

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

var csvHeader = []string{"date", "event_type", "provider", "patient", "facts", "confidence", "citation"}

// CSVRenderer renders the chronology projection as a flat CSV, one row per
// entry, in the same row order as the other export formats (§4.P).
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv" }

func (CSVRenderer) Render(_ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry, _ domain.ChecklistResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range projection {
		row := []string{
			e.DateDisplay,
			e.EventTypeDisplay,
			e.ProviderDisplay,
			e.PatientLabel,
			strings.Join(e.Facts, " | "),
			strconv.Itoa(e.Confidence),
			e.CitationDisplay,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
