package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractConceptsFindsInjuryAndProcedure(t *testing.T) {
	hits := ExtractConcepts("Patient underwent epidural steroid injection for lumbar radiculopathy.")
	var domains []string
	for _, h := range hits {
		domains = append(domains, h.Domain)
	}
	assert.Contains(t, domains, "injury")
	assert.Contains(t, domains, "procedure")
}

func TestCanonicalInjuriesDeduplicatesAndSorts(t *testing.T) {
	injuries := CanonicalInjuries([]string{"neck pain and low back pain reported", "neck pain persists"})
	assert.Contains(t, injuries, "neck pain")
	assert.Equal(t, []string{"back pain", "low back pain", "neck pain"}, injuries)
}

func TestCanonicalProceduresAcrossFacts(t *testing.T) {
	procs := CanonicalProcedures([]string{"Transforaminal injection performed under fluoroscopy."})
	assert.ElementsMatch(t, []string{"fluoroscopy-guided procedure", "transforaminal injection"}, procs)
}

func TestCanonicalDispositionPicksHighestConfidence(t *testing.T) {
	disposition, ok := CanonicalDisposition([]string{"Patient transferred to rehab facility.", "Discharged home with home health."})
	assert.True(t, ok)
	assert.Equal(t, "Home", disposition)
}

func TestCanonicalDispositionNoneFound(t *testing.T) {
	_, ok := CanonicalDisposition([]string{"Follow up in two weeks."})
	assert.False(t, ok)
}
