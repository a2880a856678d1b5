package qa

import (
	"regexp"
	"strings"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

var bannedMetaLanguage = regexp.MustCompile(`(?i)\b(as an ai|i cannot|as a language model|it appears that|based on the provided)\b`)

var controlCharRE = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
var truncatedFragmentRE = regexp.MustCompile(`(?m)\b(?:includ|assessm|therap|diagnos|manageme)\b["\x27.]?\s*$`)
var orphanConjunctionRE = regexp.MustCompile(`(?m)\b(?:and|or|with|to)\.\s*$`)
var dischargeSummaryRE = regexp.MustCompile(`(?i)\bdischarge summary\b`)
var noiseCitationMarkersRE = regexp.MustCompile(`(?i)\b(product main couple design|difficult mission late kind|lorem ipsum|asdf qwerty)\b`)
var longClinicalFactRE = regexp.MustCompile(`\S+(\s+\S+){7,}`)
var careWindowHeaderRE = regexp.MustCompile(`(?i)spans\s+\d+\s+entries\s+from\s+(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)

func appendixBSlice(reportText string) string {
	low := strings.ToLower(reportText)
	s := strings.Index(low, "## appendix b")
	if s < 0 {
		return ""
	}
	e := strings.Index(low[s+1:], "## appendix")
	if e < 0 {
		return low[s:]
	}
	return low[s : s+1+e]
}

// LUQA is the Litigation-Usability Quality Assessor (§4.N).
type LUQA struct{}

func (LUQA) Name() string { return "LUQA" }

func (LUQA) Score(reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) domain.QAReport {
	return runRules(luqaRules, reportText, graph, projection)
}

var luqaRules = []rule{
	{
		Code: "LUQA_BANNED_META_LANGUAGE", Severity: "hard", Hard: true, Penalty: 100,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			if m := bannedMetaLanguage.FindString(reportText); m != "" {
				return false, []string{m}
			}
			return true, nil
		},
	},
	{
		Code: "LUQA_PLACEHOLDER_ROW_RATIO", Severity: "soft", Penalty: 10,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			placeholders := 0
			for _, e := range projection {
				if len(e.Facts) == 0 {
					placeholders++
				}
			}
			return float64(placeholders)/float64(len(projection)) <= 0.1, nil
		},
	},
	{
		Code: "LUQA_FACT_DENSITY", Severity: "soft", Penalty: 10,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			total := 0
			for _, e := range projection {
				total += len(e.Facts)
			}
			return float64(total)/float64(len(projection)) >= 1.0, nil
		},
	},
	{
		Code: "LUQA_DUPLICATE_SNIPPET_RATIO", Severity: "soft", Penalty: 5,
		Evaluate: func(_ string, graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			if graph == nil || len(graph.Citations) == 0 {
				return true, nil
			}
			seen := make(map[string]int)
			for _, c := range graph.Citations {
				seen[strings.ToLower(strings.TrimSpace(c.Snippet))]++
			}
			dupes := 0
			for _, n := range seen {
				if n > 1 {
					dupes += n - 1
				}
			}
			return float64(dupes)/float64(len(graph.Citations)) <= 0.2, nil
		},
	},
	{
		Code: "LUQA_REQUIRED_BUCKET_PRESENCE", Severity: "soft", Penalty: 10,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			required := map[string]bool{"ED": false, "MRI": false, "procedure": false, "ortho": false}
			for _, e := range projection {
				for k := range required {
					if strings.Contains(strings.ToLower(e.EventTypeDisplay), strings.ToLower(k)) {
						required[k] = true
					}
				}
			}
			var missing []string
			for k, present := range required {
				if !present {
					missing = append(missing, k)
				}
			}
			return len(missing) == 0, missing
		},
	},
	{
		Code: "LUQA_CONTROL_CHARACTER_ARTIFACTS", Severity: "hard", Hard: true, Penalty: 20,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			if m := controlCharRE.FindString(reportText); m != "" {
				return false, []string{"control character in rendered text"}
			}
			return true, nil
		},
	},
	{
		Code: "LUQA_TRUNCATED_FRAGMENT_ENDINGS", Severity: "hard", Hard: true, Penalty: 20,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			var hits []string
			if m := truncatedFragmentRE.FindString(reportText); m != "" {
				hits = append(hits, m)
			}
			if m := orphanConjunctionRE.FindString(reportText); m != "" {
				hits = append(hits, m)
			}
			return len(hits) == 0, hits
		},
	},
	{
		Code: "LUQA_DISCHARGE_SUMMARY_LEAK", Severity: "hard", Hard: true, Penalty: 20,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			slice := appendixBSlice(reportText)
			if slice == "" {
				return true, nil
			}
			if m := dischargeSummaryRE.FindString(slice); m != "" {
				return false, []string{m}
			}
			return true, nil
		},
	},
	{
		Code: "LUQA_VERBATIM_ANCHOR_RATIO", Severity: "hard", Hard: true, Penalty: 30,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			verbatim := 0
			for _, e := range projection {
				for _, f := range e.Facts {
					if strings.Contains(f, `"`) || longClinicalFactRE.MatchString(f) {
						verbatim++
						break
					}
				}
			}
			ratio := float64(verbatim) / float64(len(projection))
			if ratio < 0.70 {
				return false, nil
			}
			return true, nil
		},
	},
	{
		// Compares the rendered Executive Summary's declared treatment window
		// against the actual span of cited, substantive timeline rows.
		Code: "LUQA_CARE_WINDOW_INTEGRITY", Severity: "hard", Hard: true, Penalty: 20,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			m := careWindowHeaderRE.FindStringSubmatch(reportText)
			if m == nil {
				return true, nil
			}
			headerStart, err1 := time.Parse("2006-01-02", m[1])
			headerEnd, err2 := time.Parse("2006-01-02", m[2])
			if err1 != nil || err2 != nil {
				return true, nil
			}
			var actualStart, actualEnd time.Time
			found := false
			for _, e := range projection {
				if strings.TrimSpace(e.CitationDisplay) == "" || len(e.Facts) == 0 {
					continue
				}
				if !found || e.SortDate.Before(actualStart) {
					actualStart = e.SortDate
				}
				if !found || e.SortDate.After(actualEnd) {
					actualEnd = e.SortDate
				}
				found = true
			}
			if !found {
				return true, nil
			}
			startDrift := headerStart.Sub(actualStart).Hours() / 24
			endDrift := headerEnd.Sub(actualEnd).Hours() / 24
			if startDrift > 1 || startDrift < -1 || endDrift > 1 || endDrift < -1 {
				return false, []string{"care window header does not match actual substantive row span"}
			}
			return true, nil
		},
	},
	{
		Code: "LUQA_NOISE_CITATION_SUPPRESSION", Severity: "hard", Hard: true, Penalty: 20,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			noiseRows, citedNoiseRows := 0, 0
			for _, e := range projection {
				facts := strings.ToLower(strings.Join(e.Facts, " "))
				if !noiseCitationMarkersRE.MatchString(facts) {
					continue
				}
				noiseRows++
				if strings.TrimSpace(e.CitationDisplay) != "" {
					citedNoiseRows++
				}
			}
			if noiseRows == 0 {
				return true, nil
			}
			if float64(citedNoiseRows)/float64(noiseRows) > 0.05 {
				return false, []string{"noise rows still carry citations"}
			}
			return true, nil
		},
	},
}
