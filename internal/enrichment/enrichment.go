// Package enrichment implements the component L bucket enrichment pass:
// detecting whether the source packet contains signal for a required
// content bucket, and synthesizing a minimal anchored projection entry when
// the signal is present but no qualifying event survived upstream (§4.L).
package enrichment

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/citeline/chronology-core/internal/domain"
)

// RequiredBuckets are always checked; PTEval is optional (included only when
// the source packet otherwise shows PT signal).
var RequiredBuckets = []domain.Bucket{domain.BucketED, domain.BucketMRI, domain.BucketProc, domain.BucketOrtho}

var bucketSignals = map[domain.Bucket]*regexp.Regexp{
	domain.BucketED:     regexp.MustCompile(`(?i)\b(emergency department|\bED\b|emergency room)\b`),
	domain.BucketMRI:    regexp.MustCompile(`(?i)\bMRI\b`),
	domain.BucketProc:   regexp.MustCompile(`(?i)\b(procedure performed|surgical procedure|operative)\b`),
	domain.BucketOrtho:  regexp.MustCompile(`(?i)\b(orthop(?:a|e)dic|ortho\b)`),
	domain.BucketPTEval: regexp.MustCompile(`(?i)\b(physical therapy evaluation|pt eval)\b`),
}

var (
	vertebralLevelPattern = regexp.MustCompile(`(?i)\b([CLT]\d-[CLT]?\d)\b`)
	medicationPattern     = regexp.MustCompile(`(?i)\b([A-Z][a-z]+\s+\d+(?:\.\d+)?\s*mg)\b`)
	guidancePattern       = regexp.MustCompile(`(?i)\b(fluoroscop\w*|ultrasound.guided|ct.guided)\b`)
	complicationPattern   = regexp.MustCompile(`(?i)\b(complication\w*)\b`)
)

// bucketEventTypes maps a bucket to the event types that would already
// satisfy it, so enrichment only fires when none exist.
var bucketEventTypes = map[domain.Bucket][]domain.EventType{
	domain.BucketED:     {domain.EventERVisit},
	domain.BucketMRI:    {domain.EventImagingStudy},
	domain.BucketProc:   {domain.EventProcedure},
	domain.BucketOrtho:  {domain.EventOfficeVisit, domain.EventProcedure},
	domain.BucketPTEval: {domain.EventPTVisit},
}

func sourcePresent(bucket domain.Bucket, pages []domain.Page) []domain.Page {
	signal := bucketSignals[bucket]
	var hits []domain.Page
	for _, p := range pages {
		if signal.MatchString(p.Text) {
			hits = append(hits, p)
		}
	}
	return hits
}

func bucketCovered(bucket domain.Bucket, events []domain.Event) bool {
	types := bucketEventTypes[bucket]
	for _, e := range events {
		for _, t := range types {
			if e.EventType == t {
				return true
			}
		}
	}
	return false
}

// harvest pulls the §4.L structured-detail fields from a set of anchor
// pages.
func harvest(pages []domain.Page) (levels, meds, guidance, complications []string) {
	for _, p := range pages {
		levels = append(levels, vertebralLevelPattern.FindAllString(p.Text, -1)...)
		meds = append(meds, medicationPattern.FindAllString(p.Text, -1)...)
		guidance = append(guidance, guidancePattern.FindAllString(p.Text, -1)...)
		complications = append(complications, complicationPattern.FindAllString(p.Text, -1)...)
	}
	return
}

// synthesize builds one anchored, flagged-synthesized projection entry for
// a bucket whose source has signal but whose events list has none.
func synthesize(bucket domain.Bucket, anchorPages []domain.Page, earliestDate time.Time) domain.ChronologyProjectionEntry {
	if len(anchorPages) > 5 {
		anchorPages = anchorPages[:5]
	}
	levels, meds, guidance, complications := harvest(anchorPages)

	var facts []string
	facts = append(facts, fmt.Sprintf("Source packet contains %s signal with no qualifying extracted event.", bucket))
	for _, l := range dedupe(levels) {
		facts = append(facts, fmt.Sprintf("Vertebral level referenced: %s", l))
	}
	for _, m := range dedupe(meds) {
		facts = append(facts, fmt.Sprintf("Medication referenced: %s", m))
	}
	for _, g := range dedupe(guidance) {
		facts = append(facts, fmt.Sprintf("Imaging guidance referenced: %s", g))
	}
	for _, c := range dedupe(complications) {
		facts = append(facts, fmt.Sprintf("Complication referenced: %s", c))
	}

	var pageNumbers []int
	for _, p := range anchorPages {
		pageNumbers = append(pageNumbers, p.PageNumber)
	}

	dateDisplay := "Undated"
	if !earliestDate.IsZero() {
		dateDisplay = fmt.Sprintf("%s (time not documented)", earliestDate.Format("2006-01-02"))
	}

	return domain.ChronologyProjectionEntry{
		EventID:           fmt.Sprintf("synthesized-%s", bucket),
		DateDisplay:       dateDisplay,
		SortDate:          earliestDate,
		EventTypeDisplay:  fmt.Sprintf("%s (synthesized)", bucket),
		Facts:             facts,
		Synthesized:       true,
		SourcePageNumbers: pageNumbers,
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Enrich checks every required bucket (plus pt_eval when the packet shows PT
// signal) for source-presence-without-coverage and appends a synthesized
// entry for each gap found.
func Enrich(pages []domain.Page, events []domain.Event, projection []domain.ChronologyProjectionEntry, anchorDate time.Time) []domain.ChronologyProjectionEntry {
	buckets := append([]domain.Bucket{}, RequiredBuckets...)
	if len(sourcePresent(domain.BucketPTEval, pages)) > 0 {
		buckets = append(buckets, domain.BucketPTEval)
	}

	out := append([]domain.ChronologyProjectionEntry{}, projection...)
	for _, bucket := range buckets {
		anchors := sourcePresent(bucket, pages)
		if len(anchors) == 0 || bucketCovered(bucket, events) {
			continue
		}
		out = append(out, synthesize(bucket, anchors, anchorDate))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortDate.Before(out[j].SortDate) })
	return out
}
