package extract

import "regexp"

// Shared code-family regexes used across the domain extractors (§4.F).
var (
	icd10Pattern       = regexp.MustCompile(`\b[A-TV-Z][0-9][0-9AB](?:\.[0-9A-TV-Z]{1,4})?\b`)
	cptPattern         = regexp.MustCompile(`\b\d{5}\b`)
	hcpcsPattern       = regexp.MustCompile(`\b[A-Z]\d{4}\b`)
	revenueCodePattern = regexp.MustCompile(`(?i)\brev(?:enue)?\s*(?:code)?\s*:?\s*(\d{3,4})\b`)
)
