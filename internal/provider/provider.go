// Package provider implements the two-pass provider detector: candidate
// extraction per page, then clustering by normalized-name similarity
// (component D).
package provider

import (
	"crypto/sha1"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

var (
	labelPattern = regexp.MustCompile(`(?im)^\s*(?:facility|provider|seen by|signed by|attending|physician)\s*:\s*(.+)$`)
	nameTitlePattern = regexp.MustCompile(`\bDr\.?\s+[A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+)?\b`)
	nameSuffixPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z'-]+,\s*[A-Z][a-zA-Z'-]+\s+(?:MD|DO|DC|DPM)\b`)
	letterheadKeyword = regexp.MustCompile(`(?i)\b(medical|hospital|clinic|health|center|imaging|therapy|ortho)\b`)

	negativeStoplist = map[string]bool{
		"patient": true, "chief complaint": true, "assessment": true, "plan": true,
		"history of present illness": true, "diagnosis": true, "date of service": true,
	}

	suffixStrip = regexp.MustCompile(`(?i)\s*,?\s*(MD|DO|DC|DPM|PA|NP|RN)\.?\s*$`)
	punctStrip  = regexp.MustCompile(`[^a-z0-9\s]`)

	providerTypeKeywords = map[domain.ProviderType][]string{
		domain.ProviderHospital:   {"hospital", "medical center", "emergency department", "er "},
		domain.ProviderImaging:    {"imaging", "radiology", "mri", "diagnostic"},
		domain.ProviderPT:         {"physical therapy", "rehabilitation", "rehab"},
		domain.ProviderER:         {"emergency"},
		domain.ProviderPCP:        {"primary care", "family medicine", "family practice"},
		domain.ProviderSpecialist: {"orthopedic", "neurology", "neurosurgery", "pain management"},
	}
)

// candidate is one per-page raw provider-name detection before clustering.
type candidate struct {
	raw        string
	page       int
	snippet    string
	confidence int
}

func rejectCandidate(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 3 || len(trimmed) > 120 {
		return true
	}
	if strings.HasSuffix(trimmed, ".") {
		return true
	}
	if negativeStoplist[strings.ToLower(trimmed)] {
		return true
	}
	words := strings.Fields(trimmed)
	if len(words) > 3 {
		lower := 0
		for _, w := range words {
			if w == strings.ToLower(w) {
				lower++
			}
		}
		if float64(lower)/float64(len(words)) > 0.85 {
			return true
		}
	}
	return false
}

// extractCandidates runs the pass-1 candidate extraction across a page's
// text (§4.D.1).
func extractCandidates(page domain.Page) []candidate {
	var out []candidate

	for _, m := range labelPattern.FindAllStringSubmatch(page.Text, -1) {
		if raw := strings.TrimSpace(m[1]); !rejectCandidate(raw) {
			out = append(out, candidate{raw: raw, page: page.PageNumber, snippet: m[0], confidence: 80})
		}
	}
	for _, m := range nameTitlePattern.FindAllString(page.Text, -1) {
		if !rejectCandidate(m) {
			out = append(out, candidate{raw: m, page: page.PageNumber, snippet: m, confidence: 70})
		}
	}
	for _, m := range nameSuffixPattern.FindAllString(page.Text, -1) {
		if !rejectCandidate(m) {
			out = append(out, candidate{raw: m, page: page.PageNumber, snippet: m, confidence: 75})
		}
	}

	lines := strings.Split(page.Text, "\n")
	top := lines[:len(lines)/5]
	for _, line := range top {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !letterheadKeyword.MatchString(trimmed) || rejectCandidate(trimmed) {
			continue
		}
		out = append(out, candidate{raw: trimmed, page: page.PageNumber, snippet: trimmed, confidence: 60})
	}

	return out
}

// normalizeName implements the §4.D.2 normalization: lowercase,
// punctuation-strip, suffix-strip, known abbreviation substitution, and
// whitespace collapse.
func normalizeName(raw string) string {
	n := strings.ToLower(raw)
	n = suffixStrip.ReplaceAllString(n, "")
	n = punctStrip.ReplaceAllString(n, " ")
	n = strings.ReplaceAll(n, "saint", "st")
	n = strings.ReplaceAll(n, "center", "ctr")
	n = strings.Join(strings.Fields(n), " ")
	return n
}

func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

func inferType(snippet string) domain.ProviderType {
	lower := strings.ToLower(snippet)
	for pt, keywords := range providerTypeKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return pt
			}
		}
	}
	return domain.ProviderUnknown
}

// Detect runs both passes across all pages of one source document and
// returns the clustered Provider roster with stable, sha1-derived IDs.
func Detect(sourceDocumentID string, pages []domain.Page) []domain.Provider {
	var candidates []candidate
	for _, p := range pages {
		candidates = append(candidates, extractCandidates(p)...)
	}
	if len(candidates) == 0 {
		return nil
	}

	clusters := make([][]candidate, 0)
	normalized := make([]string, len(candidates))
	for i, c := range candidates {
		normalized[i] = normalizeName(c.raw)
	}

	assigned := make([]bool, len(candidates))
	for i := range candidates {
		if assigned[i] {
			continue
		}
		cluster := []candidate{candidates[i]}
		assigned[i] = true
		for j := i + 1; j < len(candidates); j++ {
			if assigned[j] {
				continue
			}
			if jaccard(normalized[i], normalized[j]) >= 0.6 {
				cluster = append(cluster, candidates[j])
				assigned[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}

	providers := make([]domain.Provider, 0, len(clusters))
	for _, cluster := range clusters {
		sort.Slice(cluster, func(i, j int) bool { return cluster[i].confidence > cluster[j].confidence })
		best := cluster[0]
		norm := normalizeName(best.raw)

		evidence := make([]domain.ProviderEvidence, 0, len(cluster))
		for _, c := range cluster {
			evidence = append(evidence, domain.ProviderEvidence{Page: c.page, Snippet: c.snippet})
		}

		id := fmt.Sprintf("%s-provider-%x", sourceDocumentID, sha1.Sum([]byte(norm)))[:40]
		providers = append(providers, domain.Provider{
			ProviderID:      id,
			DetectedNameRaw: best.raw,
			NormalizedName:  norm,
			ProviderType:    inferType(best.snippet),
			Confidence:      best.confidence,
			Evidence:        evidence,
		})
	}

	sort.Slice(providers, func(i, j int) bool { return providers[i].NormalizedName < providers[j].NormalizedName })
	return providers
}
