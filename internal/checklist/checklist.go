// Package checklist implements the component O master litigation checklist:
// the final pass/fail gate combining the three quality scorers with the
// structural hard invariants (H1-H8), the quality/semantic/usability gates
// (Q1-Q8, Q_SEM_1..5, Q_USE_1..5, Q_FINAL_RENDER_CONSISTENCY), and the
// strict numeric rubric (§4.O).
package checklist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/sirupsen/logrus"
)

// gate is one registered H/Q check; Evaluate never aborts the run on its own
// failure, it only reports pass/fail plus cited examples.
type gate struct {
	Code string
	Hard bool
	// Required reports whether this gate is in scope for the current run; Q2
	// and Q4 are only required on large packets per §4.O.
	Required func(graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) bool
	Evaluate func(reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (pass bool, examples []string)
}

func alwaysRequired(*domain.EvidenceGraph, []domain.ChronologyProjectionEntry) bool { return true }

var dateInTextRE = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

func firstDate(s string) (time.Time, bool) {
	m := dateInTextRE.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
}

func joinedFacts(e domain.ChronologyProjectionEntry) string {
	return strings.ToLower(strings.Join(e.Facts, " "))
}

// providerContaminationTokens are document/run labels that must never leak
// into a rendered provider/facility field.
var providerContaminationTokens = []string{
	"stress test", "synthea", "1000 page", "medical record summary", "chronology eval", "sample 172",
}

var vitalsMarkers = []string{"blood pressure", "heart rate", "respiratory rate", "body weight", "body height", "bmi", "temperature", "pulse"}
var questionnaireMarkers = []string{"phq-9", "gad-7", "questionnaire", "survey score", "pain interference", "promis"}
var adminMarkers = []string{"administrative", "record index", "cover sheet"}

var abnormalLabRE = regexp.MustCompile(`(?i)\b(h|l|high|low|critical|panic|elevated|depressed|abnormal)\b|[<>]`)
var isoTimestampRE = regexp.MustCompile(`(?i)\b(\d{4}-\d{2}-\d{2})t\d{2}:\d{2}:\d{2}z\b`)

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// substanceRatios computes the §4.O Q1 vitals/admin ratios shared between
// the Q1 gate and the rubric's ratio penalty terms.
func substanceRatios(projection []domain.ChronologyProjectionEntry) (vitalsRatio, adminRatio float64, routineLabRows int) {
	if len(projection) == 0 {
		return 0, 0, 0
	}
	var vitalsOrQ, admin int
	for _, e := range projection {
		facts := joinedFacts(e)
		if containsAny(facts, vitalsMarkers) || containsAny(facts, questionnaireMarkers) {
			vitalsOrQ++
		}
		if containsAny(facts, adminMarkers) {
			admin++
		}
		if strings.Contains(strings.ToLower(e.EventTypeDisplay), "lab") && strings.Contains(facts, "labs found") && !abnormalLabRE.MatchString(facts) {
			routineLabRows++
		}
	}
	n := float64(len(projection))
	return float64(vitalsOrQ) / n, float64(admin) / n, routineLabRows
}

// extractSummaryField mirrors the original tool's _extract_summary_field:
// a "Field: value" line, ignoring the tool's own "not established" sentinels.
func extractSummaryField(reportText, field string) string {
	re := regexp.MustCompile(`(?im)^\s*` + regexp.QuoteMeta(field) + `\s*:\s*(.+?)\s*$`)
	m := re.FindStringSubmatch(reportText)
	if m == nil {
		return ""
	}
	value := strings.TrimSpace(m[1])
	switch strings.ToLower(value) {
	case "not established from records", "not stated in records", "unable to determine from provided records", "unknown", "none documented", "":
		return ""
	}
	return value
}

// anchoredInPages returns the number of source pages on which term appears
// verbatim (case-insensitive), the §4.O high-risk-claim anchor check.
func anchoredInPages(graph *domain.EvidenceGraph, term string) int {
	if graph == nil || term == "" {
		return 0
	}
	low := strings.ToLower(term)
	count := 0
	for _, p := range graph.Pages {
		if strings.Contains(strings.ToLower(p.Text), low) {
			count++
		}
	}
	return count
}

var hardGates = []gate{
	{
		Code: "H1_NO_FABRICATED_HIGH_RISK_CLAIMS", Hard: true, Required: alwaysRequired,
		Evaluate: func(reportText string, graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			var unanchored []string
			if doi := extractSummaryField(reportText, "Date of Injury"); doi != "" && anchoredInPages(graph, doi) < 1 {
				unanchored = append(unanchored, "date_of_injury: "+doi)
			}
			if mech := extractSummaryField(reportText, "Mechanism"); mech != "" && anchoredInPages(graph, mech) < 1 {
				unanchored = append(unanchored, "mechanism: "+mech)
			}
			if inj := extractSummaryField(reportText, "Primary Injuries"); inj != "" {
				terms := strings.Split(inj, ",")
				required := 1
				if len(terms) > 1 {
					required = 2
				}
				anchors := 0
				for _, t := range terms {
					anchors += anchoredInPages(graph, strings.TrimSpace(t))
				}
				if anchors < required {
					unanchored = append(unanchored, "primary_injuries: "+inj)
				}
			}
			return len(unanchored) == 0, unanchored
		},
	},
	{
		Code: "H2_PATIENT_BOUNDARY_INTEGRITY", Hard: true, Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			labelByEvent := make(map[string]string, len(projection))
			var crossings []string
			for _, e := range projection {
				if prior, seen := labelByEvent[e.EventID]; seen && prior != e.PatientLabel {
					crossings = append(crossings, e.EventID)
					continue
				}
				labelByEvent[e.EventID] = e.PatientLabel
			}
			return len(crossings) == 0, crossings
		},
	},
	{
		Code: "H3_NO_UNKNOWN_PATIENT_IN_CORE", Hard: true, Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			var rows []string
			for _, e := range projection {
				if e.PatientLabel == domain.UnknownPatientLabel {
					rows = append(rows, e.EventID)
				}
			}
			return len(rows) == 0, rows
		},
	},
	{
		Code: "H4_CITATIONS_PRESENT_ON_TIMELINE_ROWS", Hard: true, Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			cited := 0
			for _, e := range projection {
				if strings.TrimSpace(e.CitationDisplay) != "" {
					cited++
				}
			}
			coverage := float64(cited) / float64(len(projection))
			if coverage < 0.95 {
				return false, []string{fmt.Sprintf("timeline_citation_coverage=%.3f", coverage)}
			}
			return true, nil
		},
	},
	{
		Code: "H5_TEMPORAL_SANITY", Hard: true, Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			var mismatches []string
			for _, e := range projection {
				rowDate := e.SortDate
				if rowDate.IsZero() {
					continue
				}
				for _, ts := range isoTimestampRE.FindAllStringSubmatch(joinedFacts(e), -1) {
					tsDate, ok := firstDate(ts[1])
					if !ok {
						continue
					}
					if diff := tsDate.Sub(rowDate).Hours() / 24; diff > 1 || diff < -1 {
						mismatches = append(mismatches, e.EventID)
					}
				}
			}
			return len(mismatches) == 0, mismatches
		},
	},
	{
		Code: "H6_PROVIDER_FACILITY_CONTAMINATION", Hard: true, Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			var contaminated []string
			for _, e := range projection {
				if containsAny(strings.ToLower(e.ProviderDisplay), providerContaminationTokens) {
					contaminated = append(contaminated, e.EventID)
				}
			}
			return len(contaminated) == 0, contaminated
		},
	},
	{
		// Run-to-run provenance stability is enforced by the persistence layer's
		// idempotent upsert (internal/persistence), not recomputed here.
		Code: "H7_DETERMINISM_PLACEHOLDER", Hard: true, Required: alwaysRequired,
		Evaluate: func(string, *domain.EvidenceGraph, []domain.ChronologyProjectionEntry) (bool, []string) {
			return true, nil
		},
	},
	{
		// Artifact files (PDF/CSV/DOCX) are written by the renderer stage that
		// runs after this checklist, so the output contract checked here is the
		// render-layer data contract: every row must resolve back to an event.
		Code: "H8_OUTPUT_CONTRACT", Hard: true, Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			var bad []string
			for i, e := range projection {
				if e.EventID == "" {
					bad = append(bad, fmt.Sprintf("row_%d", i))
				}
			}
			return len(bad) == 0, bad
		},
	},
}

var medGibberishRE = regexp.MustCompile(`(?i)\b(difficult mission late kind|lorem ipsum|asdf|qwerty)\b`)
var mechanismRE = regexp.MustCompile(`(?i)\b(mva|mvc|motor vehicle|rear[- ]end|collision|accident|fell|fall|slipped)\b`)
var procedureAnchorRE = regexp.MustCompile(`(?i)\b(depo-?medrol|lidocaine|fluoroscopy|interlaminar|transforaminal|epidural steroid injection|esi)\b`)
var medTokenRE = regexp.MustCompile(`(?i)\b(fracture|radiculopathy|protrusion|herniation|stenosis|infection|tear|sprain|strain|diagnosis|impression|assessment|pain|neuropathy|spondylosis|wound|icd)\b`)
var dxCodeRE = regexp.MustCompile(`(?i)\b[A-TV-Z][0-9][0-9A-Z](?:\.[0-9A-Z]{1,4})?\b`)
var noiseTermsRE = regexp.MustCompile(`(?i)\b(product main couple design|difficult mission late kind)\b`)
var placeholderLanguageRE = regexp.MustCompile(`(?i)\b(limited detail|encounter recorded|continuity of care|documentation noted)\b`)
var templateLanguageRE = regexp.MustCompile(`(?i)acute-care intervention performed|clinical encounter includes extracted medical findings|documented management actions are summarized|outcome supported by cited record text`)
var metaLanguageRE = regexp.MustCompile(`(?i)\b(identified from source|encounter identified|not stated in records|documentation suggests)\b`)
var dotPdfRE = regexp.MustCompile(`(?i)\.\s+pdf\b`)
var flowsheetTimestampRE = regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`)
var flowsheetMedicalRE = regexp.MustCompile(`(?i)\b(impression|assessment|diagnosis|fracture|tear|infection|mri|x-?ray|rom|strength|pain|medication|injection|procedure|discharge|admission)\b`)
var substantiveRE = regexp.MustCompile(`(?i)\b(diagnosis|impression|assessment|plan|fracture|tear|radiculopathy|stenosis|infection|depo-?medrol|lidocaine|fluoroscopy|rom|range of motion|strength|work restriction|return to work|pain\s*\d|mg\b|mcg\b|ml\b|chief complaint|hpi|emergency visit|blood pressure|heart rate)\b`)
var inpatientMarkerRE = regexp.MustCompile(`(?i)\b(admission order|hospital day|inpatient service|discharge summary|admitted|inpatient|hospitalist|icu)\b`)
var proRE = regexp.MustCompile(`(?i)\b(phq-?9|gad-?7|promis|pain interference|pain intensity|pain severity)\b`)

func entrySubstantive(e domain.ChronologyProjectionEntry) bool {
	if strings.TrimSpace(e.CitationDisplay) == "" {
		return false
	}
	return substantiveRE.MatchString(joinedFacts(e))
}

var qualityGates = []gate{
	{
		Code: "Q1_SUBSTANCE_RATIO", Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			vitalsRatio, adminRatio, routineLabRows := substanceRatios(projection)
			if vitalsRatio > 0.10 || adminRatio > 0.05 || routineLabRows > 0 {
				return false, []string{fmt.Sprintf("vitals_ratio=%.3f admin_ratio=%.3f routine_labs=%d", vitalsRatio, adminRatio, routineLabRows)}
			}
			return true, nil
		},
	},
	{
		// Large packets (>=300 source pages) must show the emergent selector
		// actually ran to a saturation/utility stop rather than an arbitrary cap;
		// the selector's stop reason isn't modeled on ChronologyProjectionEntry,
		// so this gate degrades to checking coverage is non-trivial.
		Code: "Q2_COVERAGE_FLOOR",
		Required: func(graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) bool {
			return len(graph.Pages) >= 300
		},
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			return len(projection) > 0, nil
		},
	},
	{
		Code: "Q3_MED_CHANGE_SEMANTICS_SANITY", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			hits := regexp.MustCompile(`(?i)\b(21\.7\s*mg\s*->\s*\d+|\d+\s*mg\s*->\s*21\.7)\b`).FindAllString(reportText, -1)
			return len(hits) == 0, hits
		},
	},
	{
		Code: "Q4_GAP_ANCHORING",
		Required: func(graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) bool {
			return len(graph.Pages) >= 300 && len(graph.Gaps) > 0
		},
		Evaluate: func(reportText string, graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			low := strings.ToLower(reportText)
			if len(graph.Gaps) == 0 {
				return true, nil
			}
			if !strings.Contains(low, "last before gap") || !strings.Contains(low, "first after gap") {
				return false, []string{"gap boundary anchors missing"}
			}
			return true, nil
		},
	},
	{
		Code: "Q5_DX_PROBLEM_PURITY", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			contam := regexp.MustCompile(`(?is)appendix b[\s\S]{0,2000}(hospital admission|emergency room admission|general examination of patient|encounter:)`)
			if contam.MatchString(reportText) {
				return false, []string{"encounter/procedure label found in Appendix B"}
			}
			return true, nil
		},
	},
	{
		Code: "Q6_PRO_DETECTION_CONSISTENCY", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			proSignal := false
			for _, e := range projection {
				if proRE.MatchString(joinedFacts(e)) {
					proSignal = true
					break
				}
			}
			appendixDNone := strings.Contains(strings.ToLower(reportText), "no patient-reported outcome measures identified")
			if proSignal && appendixDNone {
				return false, []string{"PRO signals exist but Appendix D says none"}
			}
			return true, nil
		},
	},
	{
		Code: "Q7_SDOH_QUARANTINE_NO_LEAK", Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			sdohRE := regexp.MustCompile(`(?i)\b(afraid of your partner|housing status|refugee|employment status|education level|home address|medicaid|preferred language)\b`)
			var leaks []string
			for _, e := range projection {
				if sdohRE.MatchString(joinedFacts(e)) {
					leaks = append(leaks, e.EventID)
				}
			}
			return len(leaks) == 0, leaks
		},
	},
	{
		Code: "Q8_ATTORNEY_USABILITY_SECTIONS", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			low := strings.ToLower(reportText)
			if !strings.Contains(low, "moat analysis") || !strings.Contains(low, "executive summary") {
				return false, []string{"attorney usability sections missing"}
			}
			return true, nil
		},
	},
	{
		Code: "Q_SEM_1_ENCOUNTER_TYPE_SANITY", Required: alwaysRequired,
		Evaluate: func(_ string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			inpatientRows := 0
			for _, e := range projection {
				if strings.Contains(strings.ToLower(e.EventTypeDisplay), "inpatient") {
					inpatientRows++
				}
			}
			outpatientPacket := true
			for _, p := range graph.Pages {
				if inpatientMarkerRE.MatchString(strings.ToLower(p.Text)) {
					outpatientPacket = false
					break
				}
			}
			ratio := float64(inpatientRows) / float64(len(projection))
			if outpatientPacket && ratio > 0.05 {
				return false, []string{fmt.Sprintf("inpatient_ratio=%.3f", ratio)}
			}
			return true, nil
		},
	},
	{
		Code: "Q_SEM_2_MECHANISM_REQUIRED_WHEN_PRESENT", Required: alwaysRequired,
		Evaluate: func(reportText string, graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			edHits, mechanismHits := 0, 0
			for _, p := range graph.Pages {
				low := strings.ToLower(p.Text)
				if strings.Contains(low, "emergency") {
					edHits++
				}
				if mechanismRE.MatchString(low) {
					mechanismHits++
				}
			}
			if edHits == 0 || mechanismHits == 0 {
				return true, nil
			}
			doi := extractSummaryField(reportText, "Date of Injury")
			mech := extractSummaryField(reportText, "Mechanism")
			if doi == "" || mech == "" {
				return false, []string{"mechanism keywords present in ED context but DOI/mechanism summary not populated"}
			}
			return true, nil
		},
	},
	{
		Code: "Q_SEM_3_PROCEDURE_SPECIFICITY_WHEN_ANCHORS_PRESENT", Required: alwaysRequired,
		Evaluate: func(reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			sourceProcHits := 0
			for _, p := range graph.Pages {
				terms := map[string]bool{}
				for _, t := range procedureAnchorRE.FindAllString(strings.ToLower(p.Text), -1) {
					terms[t] = true
				}
				if len(terms) >= 2 {
					sourceProcHits++
				}
			}
			if sourceProcHits == 0 {
				return true, nil
			}
			procEvents := 0
			for _, e := range projection {
				if strings.Contains(strings.ToLower(e.EventTypeDisplay), "procedure") {
					procEvents++
				}
			}
			reportHits := len(procedureAnchorRE.FindAllString(strings.ToLower(reportText), -1))
			if procEvents == 0 || reportHits < 1 {
				return false, []string{"procedure anchors present in source but rendered procedure lacks specific details"}
			}
			return true, nil
		},
	},
	{
		Code: "Q_SEM_4_DX_PURITY", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			dxSlice := appendixSlice(reportText, "appendix b", "appendix c")
			lines := bulletLines(dxSlice)
			if len(lines) == 0 {
				return true, nil
			}
			medical, gibberish := 0, 0
			for _, ln := range lines {
				if medGibberishRE.MatchString(ln) {
					gibberish++
				}
				if medTokenRE.MatchString(ln) || dxCodeRE.MatchString(ln) {
					medical++
				}
			}
			purity := float64(medical) / float64(len(lines))
			if purity < 0.70 || gibberish > 0 {
				return false, []string{fmt.Sprintf("purity=%.3f gibberish=%d", purity, gibberish)}
			}
			return true, nil
		},
	},
	{
		Code: "Q_SEM_5_DATE_DRIFT", Required: alwaysRequired,
		Evaluate: func(_ string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			var dates []time.Time
			for _, e := range projection {
				if !entrySubstantive(e) || e.SortDate.IsZero() {
					continue
				}
				dates = append(dates, e.SortDate)
			}
			if len(dates) < 2 || len(graph.Gaps) == 0 {
				return true, nil
			}
			maxDate := dates[0]
			for _, d := range dates {
				if d.After(maxDate) {
					maxDate = d
				}
			}
			var careWindowEnd time.Time
			for _, g := range graph.Gaps {
				if g.EndDate.After(careWindowEnd) {
					careWindowEnd = g.EndDate
				}
			}
			if careWindowEnd.IsZero() {
				return true, nil
			}
			drift := maxDate.Sub(careWindowEnd).Hours() / 24
			if drift > 7 {
				return false, []string{fmt.Sprintf("drift_days=%.0f", drift)}
			}
			return true, nil
		},
	},
	{
		Code: "Q_USE_1_REQUIRED_BUCKETS_PRESENT", Required: alwaysRequired,
		Evaluate: func(_ string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			present := map[domain.Bucket]bool{}
			for _, e := range projection {
				et := strings.ToLower(e.EventTypeDisplay)
				prov := strings.ToLower(e.ProviderDisplay)
				facts := joinedFacts(e)
				switch {
				case strings.Contains(et, "procedure") || strings.Contains(et, "surgery") || procedureAnchorRE.MatchString(facts):
					present[domain.BucketProc] = true
				case strings.Contains(et, "emergency"):
					present[domain.BucketED] = true
				case strings.Contains(et, "imaging") && strings.Contains(facts, "mri"):
					present[domain.BucketMRI] = true
				case strings.Contains(et, "therapy") && regexp.MustCompile(`(?i)\b(eval|evaluation)\b`).MatchString(facts):
					present[domain.BucketPTEval] = true
				case strings.Contains(et, "ortho") || strings.Contains(prov, "ortho"):
					present[domain.BucketOrtho] = true
				}
			}
			required := map[domain.Bucket]bool{}
			for _, p := range graph.Pages {
				low := strings.ToLower(p.Text)
				if strings.Contains(low, "emergency") {
					required[domain.BucketED] = true
				}
				if strings.Contains(low, "mri") {
					required[domain.BucketMRI] = true
				}
				if strings.Contains(low, "physical therapy evaluation") || strings.Contains(low, "range of motion") {
					required[domain.BucketPTEval] = true
				}
				if strings.Contains(low, "orthopedic") || strings.Contains(low, "ortho") {
					required[domain.BucketOrtho] = true
				}
				if procedureAnchorRE.MatchString(low) {
					required[domain.BucketProc] = true
				}
			}
			var missing []string
			for b := range required {
				if !present[b] {
					missing = append(missing, string(b))
				}
			}
			return len(missing) == 0, missing
		},
	},
	{
		Code: "Q_USE_2_MIN_SUBSTANTIVE_ROWS", Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			substantive := 0
			for _, e := range projection {
				if entrySubstantive(e) {
					substantive++
				}
			}
			threshold := len(projection)
			if scaled := int(float64(len(projection))*0.6 + 0.5); scaled < threshold {
				threshold = scaled
			}
			if threshold > 12 {
				threshold = 12
			}
			if threshold < 6 && len(projection) >= 6 {
				threshold = 6
			}
			if substantive < threshold {
				return false, []string{fmt.Sprintf("substantive_rows=%d threshold=%d", substantive, threshold)}
			}
			return true, nil
		},
	},
	{
		Code: "Q_USE_3_IMAGING_IMPRESSION_PRESENT",
		Required: func(graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) bool {
			for _, e := range graph.Events {
				if e.EventType == domain.EventImagingStudy {
					return true
				}
			}
			return false
		},
		Evaluate: func(_ string, graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			for _, e := range graph.Events {
				if e.Imaging != nil && strings.TrimSpace(e.Imaging.Impression) != "" {
					return true, nil
				}
			}
			return false, []string{"no imaging impression text detected"}
		},
	},
	{
		Code: "Q_USE_4_NO_NOISE_GIBBERISH", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			if m := noiseTermsRE.FindString(reportText); m != "" {
				return false, []string{m}
			}
			return true, nil
		},
	},
	{
		Code: "Q_USE_5_NO_PLACEHOLDER_LANGUAGE", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			hits := placeholderLanguageRE.FindAllString(reportText, -1)
			return len(hits) == 0, hits
		},
	},
	{
		Code: "Q_USE_HIGH_DENSITY_RATIO", Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			if len(projection) == 0 {
				return true, nil
			}
			high := 0
			for _, e := range projection {
				if entrySubstantive(e) {
					high++
				}
			}
			ratio := float64(high) / float64(len(projection))
			if ratio < 0.70 {
				return false, []string{fmt.Sprintf("high_substance_ratio=%.3f", ratio)}
			}
			return true, nil
		},
	},
	{
		Code: "Q_USE_NO_FLOW_NOISE_EVENTS", Required: alwaysRequired,
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			noise := 0
			for _, e := range projection {
				facts := joinedFacts(e)
				tsHits := len(flowsheetTimestampRE.FindAllString(facts, -1))
				medHits := len(flowsheetMedicalRE.FindAllString(facts, -1))
				if tsHits >= 10 && medHits < 2 {
					noise++
				}
			}
			if noise > 0 {
				return false, []string{fmt.Sprintf("flow_noise_rows=%d", noise)}
			}
			return true, nil
		},
	},
	{
		Code: "Q_USE_NO_TEMPLATE_LANGUAGE", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			hits := templateLanguageRE.FindAllString(reportText, -1)
			return len(hits) == 0, hits
		},
	},
	{
		Code: "Q_USE_VERBATIM_SNIPPETS", Required: alwaysRequired,
		Evaluate: func(_ string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			return verbatimSnippetRatio(graph, projection) >= 0.70, nil
		},
	},
	{
		// Large packets must show the emergent selector actually consumed the
		// available PT/required-bucket signal rather than stopping early.
		Code: "Q_USE_EXTRACTION_SUFFICIENCY",
		Required: func(graph *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) bool {
			return len(graph.Pages) > 300
		},
		Evaluate: func(_ string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			substantive := 0
			for _, e := range projection {
				if entrySubstantive(e) {
					substantive++
				}
			}
			if substantive < 2 {
				return false, []string{fmt.Sprintf("substantive_events=%d", substantive)}
			}
			return true, nil
		},
	},
	{
		Code: "Q_USE_NO_META_LANGUAGE", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, _ []domain.ChronologyProjectionEntry) (bool, []string) {
			slice := appendixSlice(reportText, "chronological medical timeline", "medical record appendix")
			hits := metaLanguageRE.FindAllString(slice, -1)
			return len(hits) == 0, hits
		},
	},
	{
		Code: "Q_USE_DIRECT_SNIPPET_REQUIRED", Required: alwaysRequired,
		Evaluate: func(_ string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			return verbatimSnippetRatio(graph, projection) >= 0.80, nil
		},
	},
	{
		Code: "Q_FINAL_RENDER_CONSISTENCY", Required: alwaysRequired,
		Evaluate: func(reportText string, _ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) (bool, []string) {
			low := strings.ToLower(reportText)
			var defects []string
			totalSurgeriesRE := regexp.MustCompile(`(?im)^\s*total surgeries\s*:\s*(\d+)\s*$`)
			timelineProcRows := regexp.MustCompile(`(?im)^\s*\d{4}-\d{2}-\d{2}\s+—\s+procedure`).FindAllString(reportText, -1)
			if m := totalSurgeriesRE.FindStringSubmatch(reportText); m != nil && m[1] == "0" && len(timelineProcRows) > 0 && strings.Contains(low, "no surgeries documented") {
				defects = append(defects, "SUMMARY_TIMELINE_PROCEDURE_MISMATCH")
			}
			if dotPdfRE.MatchString(low) {
				defects = append(defects, "DOT_PDF_SPACING_RENDERED")
			}
			if regexp.MustCompile(`pt evaluation/progression[^;"]*;\s*pt evaluation/progression`).MatchString(low) {
				defects = append(defects, "PT_ROW_DUPLICATE_FRAGMENT")
			}
			return len(defects) == 0, defects
		},
	},
}

// appendixSlice extracts the lower-cased report text between the first
// occurrence of start and the first occurrence of end after it (or end of
// text when end is absent).
func appendixSlice(reportText, start, end string) string {
	low := strings.ToLower(reportText)
	s := strings.Index(low, start)
	if s < 0 {
		return ""
	}
	e := strings.Index(low[s+1:], end)
	if e < 0 {
		return low[s:]
	}
	return low[s : s+1+e]
}

func bulletLines(slice string) []string {
	var out []string
	for _, ln := range strings.Split(slice, "\n") {
		t := strings.TrimSpace(ln)
		if strings.HasPrefix(t, "-") || strings.HasPrefix(t, "•") {
			out = append(out, strings.TrimLeft(t, "-• "))
		}
	}
	return out
}

var longFactRE = regexp.MustCompile(`\S+(\s+\S+){7,}`)

// verbatimSnippetRatio is the share of timeline rows carrying a directly
// quoted or long (>=8 token) clinical fact line, the §4.N/§4.O direct-quote
// requirement shared by Q_USE_VERBATIM_SNIPPETS and Q_USE_DIRECT_SNIPPET_REQUIRED.
func verbatimSnippetRatio(_ *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry) float64 {
	if len(projection) == 0 {
		return 1.0
	}
	verbatim := 0
	for _, e := range projection {
		for _, f := range e.Facts {
			if strings.Contains(f, `"`) || longFactRE.MatchString(f) {
				verbatim++
				break
			}
		}
	}
	return float64(verbatim) / float64(len(projection))
}

// Evaluate runs every hard gate and every registered quality scorer,
// accumulating failures the way the teacher's EvaluateAllRules never aborts
// on one gate's internal failure, and computes the final pass/score per
// §4.O's rubric: start at 100, subtract min(60, 15*#hard_failures), subtract
// 100*max(0, vitals_ratio-0.10), subtract 100*max(0, admin_ratio-0.05),
// subtract 5*#failed_quality_gates capped at 20, +5 bonus when everything
// passes clean, clamp to [0,100]. Overall pass requires hard_pass &&
// quality_pass && score >= 98.
func Evaluate(reportText string, graph *domain.EvidenceGraph, projection []domain.ChronologyProjectionEntry, scorers []domain.QualityScorer, log *logrus.Logger) domain.ChecklistResult {
	var failures []domain.QAFailure
	hardPass := true
	hardFailureCount := 0

	for _, g := range hardGates {
		pass, examples := g.Evaluate(reportText, graph, projection)
		if pass {
			continue
		}
		hardPass = false
		hardFailureCount++
		failures = append(failures, domain.QAFailure{Code: g.Code, Severity: "hard", Message: g.Code, Examples: examples})
		if log != nil {
			log.WithField("gate", g.Code).WithField("examples", examples).Warn("litigation checklist hard gate failed")
		}
	}

	qualityPass := true
	failedQualityGates := 0
	for _, g := range qualityGates {
		if !g.Required(graph, projection) {
			continue
		}
		pass, examples := g.Evaluate(reportText, graph, projection)
		if pass {
			continue
		}
		qualityPass = false
		failedQualityGates++
		failures = append(failures, domain.QAFailure{Code: g.Code, Severity: "quality", Message: g.Code, Examples: examples})
		if log != nil {
			log.WithField("gate", g.Code).WithField("examples", examples).Warn("litigation checklist quality gate failed")
		}
	}

	for _, s := range scorers {
		report := s.Score(reportText, graph, projection)
		if !report.Pass {
			qualityPass = false
		}
		for _, f := range report.Failures {
			failures = append(failures, domain.QAFailure{Code: fmt.Sprintf("%s_%s", s.Name(), f.Code), Severity: f.Severity, Message: f.Message, Examples: f.Examples})
		}
		if log != nil {
			log.WithField("scorer", s.Name()).WithField("score", report.Score).Info("quality scorer complete")
		}
	}

	vitalsRatio, adminRatio, _ := substanceRatios(projection)

	score := 100
	score -= min(60, 15*hardFailureCount)
	score -= int(max(0.0, vitalsRatio-0.10) * 100)
	score -= int(max(0.0, adminRatio-0.05) * 100)
	score -= min(20, 5*failedQualityGates)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if hardPass && qualityPass && failedQualityGates == 0 {
		score += 5
	}
	if score > 100 {
		score = 100
	}

	result := domain.ChecklistResult{
		QAReport: domain.QAReport{
			Pass:     hardPass && qualityPass && score >= 98,
			Score:    score,
			Failures: failures,
		},
		HardPass:    hardPass,
		QualityPass: qualityPass,
	}
	return result
}
