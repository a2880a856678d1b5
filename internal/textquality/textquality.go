// Package textquality implements the noise filter admitted at the ingress
// of every stage that lets free text become a Fact (component A).
package textquality

import (
	"regexp"
	"strings"
)

var (
	icd10Pattern  = regexp.MustCompile(`\b[A-TV-Z][0-9][0-9AB](?:\.[0-9A-TV-Z]{1,4})?\b`)
	cptPattern    = regexp.MustCompile(`\b\d{5}\b`)
	dosagePattern = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*mg\b`)
	headingWords  = regexp.MustCompile(`(?i)\b(assessment|plan|impression|history of present illness|chief complaint|diagnosis|medications?|vital signs?)\b`)

	faxFrom  = regexp.MustCompile(`(?im)^\s*(FROM|TO|FAX)\s*:.*$`)
	barePhone = regexp.MustCompile(`\b\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`)

	wordPattern = regexp.MustCompile(`[A-Za-z']+`)
)

// stopwords is a compact general-English stopword set; large enough to
// distinguish narrative prose from dense structured clinical fragments.
var stopwords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a an the of to in on at by for with and or but is are was were be been being
		this that these those it its as from into over under again further then once here there when where why how
		all any both each few more most other some such no nor not only own same so than too very can will just
		should now i you he she we they them his her their our your`) {
		stopwords[w] = true
	}
}

// medicalTerms is the dense-signal lexicon used by MedicalDensity; it is
// intentionally broad rather than exhaustive.
var medicalTerms = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`patient diagnosis treatment symptom prescribed medication dosage physician
		physical therapy surgery procedure injury pain examination assessment plan impression admission discharge
		radiology imaging mri ct xray laboratory lab vitals chronic acute fracture sprain strain therapy referral
		orthopedic neurologist rehabilitation chiropractic epidural consult followup history present illness
		complaint clinical encounter provider hospital clinic emergency`) {
		medicalTerms[w] = true
	}
}

// MedicalDensity returns the fraction of words in text that appear in the
// medical-term lexicon.
func MedicalDensity(text string) float64 {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if medicalTerms[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// HasStructuredSignals reports whether text contains an ICD-10 code, a
// 5-digit CPT code, a dosage expression, or a clinical heading keyword.
func HasStructuredSignals(text string) bool {
	return icd10Pattern.MatchString(text) ||
		cptPattern.MatchString(text) ||
		dosagePattern.MatchString(text) ||
		headingWords.MatchString(text)
}

// stopwordRatio returns the fraction of words that are common stopwords.
func stopwordRatio(text string) float64 {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if stopwords[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// IsNoise reports whether a span of text carries no extractable medical
// substance: low medical-term density, no structured signals, and a high
// stopword ratio (§4.A).
func IsNoise(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return MedicalDensity(text) < 0.08 &&
		!HasStructuredSignals(text) &&
		stopwordRatio(text) > 0.55
}

// Clean strips fax header lines (FROM:, TO:, FAX:) and bare phone numbers,
// dedups identical lines in order, and normalizes whitespace. Repeated labels
// are not collapsed beyond that whole-line dedup.
func Clean(text string) string {
	text = faxFrom.ReplaceAllString(text, "")
	text = barePhone.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		normalized := strings.Join(strings.Fields(line), " ")
		if normalized == "" {
			continue
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}

	return strings.Join(out, "\n")
}
