// Package ontology canonicalizes free-text clinical facts into a small,
// fixed vocabulary of injury, procedure, imaging, and disposition concepts.
// It never touches a model: every mapping is a literal regex rule, run in
// declaration order. CanonicalDisposition picks the highest-confidence
// disposition match; among equal confidences the first match wins.
package ontology

import (
	"regexp"
	"sort"
)

// ConceptHit is one recognized concept within a single fact string.
type ConceptHit struct {
	Domain     string
	Canonical  string
	Source     string
	Confidence float64
}

type conceptRule struct {
	Pattern    *regexp.Regexp
	Canonical  string
	Confidence float64
}

var injuryRules = []conceptRule{
	{regexp.MustCompile(`(?i)\bcervical radiculopathy\b`), "cervical radiculopathy", 0.95},
	{regexp.MustCompile(`(?i)\blumbar radiculopathy\b`), "lumbar radiculopathy", 0.95},
	{regexp.MustCompile(`(?i)\bdisc protrusion\b`), "disc protrusion", 0.9},
	{regexp.MustCompile(`(?i)\bdisc herniation\b`), "disc herniation", 0.9},
	{regexp.MustCompile(`(?i)\bforaminal narrowing\b`), "foraminal narrowing", 0.85},
	{regexp.MustCompile(`(?i)\bfracture\b`), "fracture", 0.9},
	{regexp.MustCompile(`(?i)\bstrain\b`), "strain", 0.8},
	{regexp.MustCompile(`(?i)\bsprain\b`), "sprain", 0.8},
	{regexp.MustCompile(`(?i)\bwound infection\b`), "wound infection", 0.9},
	{regexp.MustCompile(`(?i)\binfection\b`), "infection", 0.8},
	{regexp.MustCompile(`(?i)\bneck(?:\s*,)?\s+and\s+low\s+back\s+pain\b`), "neck pain", 0.8},
	{regexp.MustCompile(`(?i)\bneck pain\b`), "neck pain", 0.75},
	{regexp.MustCompile(`(?i)\blow back pain\b`), "low back pain", 0.75},
	{regexp.MustCompile(`(?i)\bback pain\b`), "back pain", 0.7},
}

var procedureRules = []conceptRule{
	{regexp.MustCompile(`(?i)\bepidural steroid injection\b|\besi\b`), "epidural steroid injection", 0.95},
	{regexp.MustCompile(`(?i)\binterlaminar\b`), "interlaminar injection", 0.9},
	{regexp.MustCompile(`(?i)\btransforaminal\b`), "transforaminal injection", 0.9},
	{regexp.MustCompile(`(?i)\bfluoroscopy\b`), "fluoroscopy-guided procedure", 0.85},
	{regexp.MustCompile(`(?i)\bdepo-?medrol\b`), "depo-medrol administered", 0.85},
	{regexp.MustCompile(`(?i)\blidocaine\b`), "lidocaine administered", 0.85},
}

var imagingRules = []conceptRule{
	{regexp.MustCompile(`(?i)\bmri\b`), "mri", 0.9},
	{regexp.MustCompile(`(?i)\bx-?ray\b|\bxr\b`), "x-ray", 0.85},
	{regexp.MustCompile(`(?i)\bct\b|\bcta\b`), "ct", 0.85},
	{regexp.MustCompile(`(?i)\bimpression\b`), "impression", 0.8},
}

var dispositionRules = []conceptRule{
	{regexp.MustCompile(`(?i)\bdischarged home\b|\bhome with\b`), "Home", 0.95},
	{regexp.MustCompile(`(?i)\bskilled nursing\b|\bsnf\b`), "SNF", 0.95},
	{regexp.MustCompile(`(?i)\bhospice\b`), "Hospice", 0.95},
	{regexp.MustCompile(`(?i)\brehab(?:ilitation)?\b`), "Rehab", 0.9},
	{regexp.MustCompile(`(?i)\btransfer(?:red)?\b`), "Transfer", 0.85},
	{regexp.MustCompile(`(?i)\bama\b|against medical advice`), "AMA", 0.9},
	{regexp.MustCompile(`(?i)\bdeceased\b|\bdeath\b|\bexpired\b`), "Death", 0.95},
}

var domainRuleSets = []struct {
	domain string
	rules  []conceptRule
}{
	{"injury", injuryRules},
	{"procedure", procedureRules},
	{"imaging", imagingRules},
	{"disposition", dispositionRules},
}

// ExtractConcepts runs every rule set against text and returns every match,
// in domain order (injury, procedure, imaging, disposition).
func ExtractConcepts(text string) []ConceptHit {
	var out []ConceptHit
	for _, set := range domainRuleSets {
		for _, r := range set.rules {
			if r.Pattern.MatchString(text) {
				out = append(out, ConceptHit{Domain: set.domain, Canonical: r.Canonical, Source: text, Confidence: r.Confidence})
			}
		}
	}
	return out
}

// CanonicalInjuries returns the deduplicated, sorted set of injury concepts
// recognized across facts.
func CanonicalInjuries(facts []string) []string {
	return canonicalForDomain(facts, "injury")
}

// CanonicalProcedures returns the deduplicated, sorted set of procedure
// concepts recognized across facts.
func CanonicalProcedures(facts []string) []string {
	return canonicalForDomain(facts, "procedure")
}

func canonicalForDomain(facts []string, domain string) []string {
	seen := make(map[string]bool)
	for _, fact := range facts {
		for _, hit := range ExtractConcepts(fact) {
			if hit.Domain == domain {
				seen[hit.Canonical] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for canonical := range seen {
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// CanonicalDisposition returns the highest-confidence disposition concept
// recognized across facts, or ok=false if none matched.
func CanonicalDisposition(facts []string) (string, bool) {
	best := ""
	bestConfidence := -1.0
	for _, fact := range facts {
		for _, hit := range ExtractConcepts(fact) {
			if hit.Domain != "disposition" {
				continue
			}
			if hit.Confidence > bestConfidence {
				bestConfidence = hit.Confidence
				best = hit.Canonical
			}
		}
	}
	if bestConfidence < 0 {
		return "", false
	}
	return best, true
}
