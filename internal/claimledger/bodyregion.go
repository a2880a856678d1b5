package claimledger

import (
	"regexp"
	"strings"
)

var bodyRegionPattern = regexp.MustCompile(`(?i)\b(cervical|lumbar|thoracic|spine|neck|back|knee|shoulder|hip|ankle|wrist|elbow|brain|head|chest|abdomen|pelvis)\b`)

var bodyRegionCanonical = map[string]string{
	"neck": "cervical",
	"back": "lumbar",
}

// extractBodyRegion returns the lowercased canonical body region mentioned
// in text, or "general" if none is recognized.
func extractBodyRegion(text string) string {
	m := bodyRegionPattern.FindString(text)
	if m == "" {
		return "general"
	}
	region := strings.ToLower(m)
	if canonical, ok := bodyRegionCanonical[region]; ok {
		return canonical
	}
	return region
}
