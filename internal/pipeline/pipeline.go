// Package pipeline implements the component Q orchestrator: the sequential
// driver that threads a run's source pages through every extraction,
// enrichment, quality, and render stage, accumulating warnings and never
// aborting the whole run on a single stage's partial failure.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/citeline/chronology-core/internal/citation"
	"github.com/citeline/chronology-core/internal/checklist"
	"github.com/citeline/chronology-core/internal/claimguard"
	"github.com/citeline/chronology-core/internal/claimledger"
	"github.com/citeline/chronology-core/internal/confidence"
	"github.com/citeline/chronology-core/internal/dateextract"
	"github.com/citeline/chronology-core/internal/dedup"
	"github.com/citeline/chronology-core/internal/domain"
	"github.com/citeline/chronology-core/internal/enrichment"
	"github.com/citeline/chronology-core/internal/extract"
	"github.com/citeline/chronology-core/internal/gaps"
	"github.com/citeline/chronology-core/internal/pageclass"
	"github.com/citeline/chronology-core/internal/projection"
	"github.com/citeline/chronology-core/internal/provider"
	"github.com/citeline/chronology-core/internal/qa"
	"github.com/citeline/chronology-core/internal/render"
	"github.com/citeline/chronology-core/internal/segment"
	"github.com/citeline/chronology-core/internal/textquality"
)

// Orchestrator drives one run end to end. It carries no per-run state; all
// of that lives on the Run/EvidenceGraph values passed to Run.
type Orchestrator struct {
	log       *logrus.Logger
	scorers   []domain.QualityScorer
	selection claimledger.SelectionConfig
}

// NewOrchestrator wires the quality scorers and Top-10 selection config used
// by every run.
func NewOrchestrator(log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		log: log,
		scorers: []domain.QualityScorer{
			qa.LUQA{},
			qa.AttorneyReadiness{},
			qa.LegalUsability{},
		},
		selection: claimledger.DefaultSelectionConfig,
	}
}

// Input bundles the acquired text for one run. Pages are pre-OCR'd (the
// internal/ocr resolver is the collaborator that fills Page.Text upstream of
// the pipeline; the pipeline itself only ever sees already-acquired text).
type Input struct {
	SourceDocuments []domain.SourceDocument
	Pages           map[string][]domain.Page // keyed by SourceDocumentID

	// Progress, if set, is called with each stage's name as the run passes
	// through it. It is a best-effort notification for a caller streaming
	// run progress (e.g. over a websocket); the run's outcome never depends
	// on it being set or on what it does.
	Progress func(stage string)
}

func (in Input) reportProgress(stage string) {
	if in.Progress != nil {
		in.Progress(stage)
	}
}

// Run drives the full 14-stage pipeline for one run, mutating run in place
// to reflect its final lifecycle status and returning the complete output
// contract (§6 PipelineOutputs).
func (o *Orchestrator) Run(ctx context.Context, run *domain.Run, input Input) (*domain.PipelineOutputs, error) {
	startTime := time.Now()
	run.Status = domain.RunRunning
	graph := &domain.EvidenceGraph{RunID: run.RunID}

	o.log.WithFields(logrus.Fields{"run_id": run.RunID, "document_count": len(input.SourceDocuments)}).Info("starting chronology run")

	// Step 1: text quality + page classification (components A, B).
	input.reportProgress("text_quality_and_classification")
	for _, doc := range input.SourceDocuments {
		pages := input.Pages[doc.DocumentID]
		for i := range pages {
			cleaned := textquality.Clean(pages[i].Text)
			if textquality.IsNoise(cleaned) {
				run.Warnings = append(run.Warnings, domain.Warning{
					Code: domain.WarnEmptyDocument, Message: "page carries no extractable medical substance",
					Page: &pages[i].PageNumber, DocumentID: doc.DocumentID,
				})
			}
			pages[i].Text = cleaned
			pageclass.ClassifyPage(&pages[i])
		}
		graph.Pages = append(graph.Pages, pages...)
	}
	if len(graph.Pages) == 0 {
		run.Warnings = append(run.Warnings, domain.Warning{Code: domain.WarnEmptyDocument, Message: "no pages acquired for run"})
	}

	// Step 2: segmentation into per-class documents (component C).
	input.reportProgress("segmentation")
	pagesBySourceDoc := input.Pages
	for _, doc := range input.SourceDocuments {
		graph.Documents = append(graph.Documents, segment.Build(doc.DocumentID, pagesBySourceDoc[doc.DocumentID])...)
	}

	// Step 3: provider detection (component D).
	input.reportProgress("provider_detection")
	providerNames := make(map[string]string)
	for _, doc := range input.SourceDocuments {
		providers := provider.Detect(doc.DocumentID, pagesBySourceDoc[doc.DocumentID])
		graph.Providers = append(graph.Providers, providers...)
		for _, p := range providers {
			providerNames[p.ProviderID] = p.NormalizedName
		}
	}
	if len(graph.Providers) == 0 {
		run.Warnings = append(run.Warnings, domain.Warning{Code: domain.WarnNoProvidersDetected, Message: "no providers detected across any source document"})
	}

	// Step 4: per-document date anchoring + fact extraction (components E, F).
	input.reportProgress("date_anchoring_and_extraction")
	for _, doc := range graph.Documents {
		docPages := pagesForSpan(pagesBySourceDoc[doc.SourceDocumentID], doc.PageStart, doc.PageEnd)
		anchor := documentAnchorDate(docPages)
		providerID := providerForDocument(graph.Providers, doc.SourceDocumentID)
		events, citations := extract.ForDocument(doc, docPages, providerID, anchor, run.Config.PTMode)
		graph.Events = append(graph.Events, events...)
		graph.Citations = append(graph.Citations, citations...)
	}

	// Step 5: citation post-processing (component G).
	input.reportProgress("citation_processing")
	processedCitations, citationWarnings := citation.Process(graph.Citations)
	graph.Citations = processedCitations
	run.Warnings = append(run.Warnings, citationWarnings...)

	// Step 6: cross-document dedup (component H).
	input.reportProgress("dedup")
	graph.Events = dedup.Dedupe(graph.Events)

	// Step 7: confidence scoring (component I).
	input.reportProgress("confidence_scoring")
	confidence.ScoreAll(graph.Events, run.Config.EventConfidenceMinExport)

	// Step 8: gap detection (component J), computed before export filtering
	// so a low-confidence-but-real encounter still closes a care gap.
	input.reportProgress("gap_detection")
	graph.Gaps = gaps.Detect(graph.Events, run.Config.GapThresholdDays)

	exportEvents := graph.Events
	if run.Config.LowConfidenceEventBehavior == domain.ExcludeFromExport {
		exportEvents = filterLowConfidence(graph.Events)
	}
	if !run.Config.IncludeBillingEventsInTimeline {
		exportEvents = filterEventType(exportEvents, domain.EventBillingEvent)
	}

	// Step 9: projection build + merge (component K).
	input.reportProgress("projection_build")
	chronologyProjection := projection.Build(exportEvents, providerNames)

	// Step 10: bucket enrichment (component L).
	input.reportProgress("enrichment")
	anchorDate := documentAnchorDate(graph.Pages)
	chronologyProjection = enrichment.Enrich(graph.Pages, exportEvents, chronologyProjection, anchorDate)

	// Step 11: claim-guard review of the narrative synthesis (component M).
	input.reportProgress("claim_guard_review")
	narrative := buildNarrative(chronologyProjection)
	_, claimGuardResult := claimguard.Review(narrative, pageAnchorCounter(graph.Pages))
	run.Metrics = mergeMetric(run.Metrics, "claim_guard_accepted", len(claimGuardResult.AcceptedClaims))
	run.Metrics = mergeMetric(run.Metrics, "claim_guard_rejected", len(claimGuardResult.RejectedClaims))

	// Step 12: claim-ledger decomposition + Top-10 selection (supplement).
	input.reportProgress("claim_ledger_selection")
	allClaims := claimledger.BuildClaimEdges(chronologyProjection, graph.Gaps, exportEvents)
	graph.ClaimEdges = claimledger.SelectTop(allClaims, 10, o.selection)

	// Step 13: quality scoring + master litigation checklist (components N, O).
	// The report text a scorer reads must match what gets shipped, so render
	// once to produce it, evaluate the checklist, then render again with the
	// real checklist result (for the fail-cover page and manifest anchors).
	input.reportProgress("quality_scoring")
	draftReport, err := render.MarkdownRenderer{}.Render(graph, chronologyProjection, domain.ChecklistResult{})
	if err != nil {
		return nil, fmt.Errorf("failed to render draft report for quality scoring: %w", err)
	}
	result := checklist.Evaluate(string(draftReport), graph, chronologyProjection, o.scorers, o.log)

	// Step 14: deterministic artifact rendering (component P).
	input.reportProgress("artifact_rendering")
	exports, renderErr := o.renderArtifacts(graph, chronologyProjection, result)
	if renderErr != nil {
		run.Status = domain.RunFailed
		run.ErrorMessage = renderErr.Error()
		run.FinishedAt = time.Now()
		o.log.WithError(renderErr).WithField("run_id", run.RunID).Error("artifact rendering failed")
		return nil, renderErr
	}

	manifest := render.BuildManifest(chronologyProjection, graph)

	run.FinishedAt = time.Now()
	run.Metrics = mergeMetric(run.Metrics, "duration_ms", time.Since(startTime).Milliseconds())
	run.Metrics = mergeMetric(run.Metrics, "event_count", len(graph.Events))
	run.Metrics = mergeMetric(run.Metrics, "projection_count", len(chronologyProjection))
	run.Metrics = mergeMetric(run.Metrics, "gap_count", len(graph.Gaps))

	run.Status = finalStatus(result, run.Warnings)

	o.log.WithFields(logrus.Fields{
		"run_id":    run.RunID,
		"status":    run.Status,
		"events":    len(graph.Events),
		"checklist": result.Pass,
		"duration":  time.Since(startTime),
	}).Info("chronology run completed")

	input.reportProgress("completed")

	return &domain.PipelineOutputs{
		Run:           *run,
		EvidenceGraph: *graph,
		Chronology: domain.ChronologyOutput{
			Exports:        exports,
			RenderManifest: manifest,
			Checklist:      result,
		},
	}, nil
}

func (o *Orchestrator) renderArtifacts(graph *domain.EvidenceGraph, projectionEntries []domain.ChronologyProjectionEntry, result domain.ChecklistResult) (domain.ExportSet, error) {
	pdfBytes, err := render.PDFRenderer{}.Render(graph, projectionEntries, result)
	if err != nil {
		return domain.ExportSet{}, fmt.Errorf("pdf render failed: %w", err)
	}
	csvBytes, err := render.CSVRenderer{}.Render(graph, projectionEntries, result)
	if err != nil {
		return domain.ExportSet{}, fmt.Errorf("csv render failed: %w", err)
	}
	docxBytes, err := render.DOCXRenderer{}.Render(graph, projectionEntries, result)
	if err != nil {
		return domain.ExportSet{}, fmt.Errorf("docx render failed: %w", err)
	}

	return domain.ExportSet{
		PDF:  artifactRef(pdfBytes),
		CSV:  artifactRef(csvBytes),
		DOCX: artifactRef(docxBytes),
	}, nil
}

func finalStatus(result domain.ChecklistResult, warnings []domain.Warning) domain.RunStatus {
	if result.Pass {
		return domain.RunSuccess
	}
	if len(warnings) > 0 {
		return domain.RunPartial
	}
	return domain.RunFailed
}

func pagesForSpan(pages []domain.Page, start, end int) []domain.Page {
	out := make([]domain.Page, 0, end-start+1)
	for _, p := range pages {
		if p.PageNumber >= start && p.PageNumber <= end {
			out = append(out, p)
		}
	}
	return out
}

// documentAnchorDate resolves the admission anchor a document's "Day N"
// offsets are computed against: the earliest tier1-labeled date found on
// any of its pages, or the zero time if none is labeled.
func documentAnchorDate(pages []domain.Page) time.Time {
	var best time.Time
	for _, p := range pages {
		if d, ok := dateextract.ExtractTier1(p.Text); ok {
			if best.IsZero() || d.Before(best) {
				best = d
			}
		}
	}
	return best
}

// providerForDocument picks the highest-confidence provider detected for
// the document's source. All of a source document's candidates were
// detected from the same header text, so the top-confidence match is the
// provider of record for every segment drawn from it.
func providerForDocument(providers []domain.Provider, sourceDocumentID string) string {
	// provider.Detect prefixes each ID with its source document ID, cut to 40 characters.
	prefix := sourceDocumentID + "-provider-"
	if len(prefix) > 40 {
		prefix = prefix[:40]
	}
	var best *domain.Provider
	for i := range providers {
		if !strings.HasPrefix(providers[i].ProviderID, prefix) {
			continue
		}
		if best == nil || providers[i].Confidence > best.Confidence {
			best = &providers[i]
		}
	}
	if best == nil {
		return ""
	}
	return best.ProviderID
}

func filterLowConfidence(events []domain.Event) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if !e.HasFlag(confidence.LowConfidenceFlag) {
			out = append(out, e)
		}
	}
	return out
}

func filterEventType(events []domain.Event, exclude domain.EventType) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e.EventType != exclude {
			out = append(out, e)
		}
	}
	return out
}

// buildNarrative renders the field:value lines claim-guard reviews, driven
// by facts across all chronology projection entries (primary injuries,
// major complications) rather than a free-text generator (§4.M is a
// deterministic post-process, never a narrative writer).
func buildNarrative(entries []domain.ChronologyProjectionEntry) string {
	var b strings.Builder
	seen := make(map[string]bool)
	var injuries, complications []string
	for _, e := range entries {
		for _, fact := range e.Facts {
			low := strings.ToLower(fact)
			if strings.Contains(low, "diagnosis") || strings.Contains(low, "impression") {
				if !seen["i:"+fact] {
					seen["i:"+fact] = true
					injuries = append(injuries, fact)
				}
			}
			if strings.Contains(low, "complication") {
				if !seen["c:"+fact] {
					seen["c:"+fact] = true
					complications = append(complications, fact)
				}
			}
		}
	}
	if len(injuries) > 0 {
		fmt.Fprintf(&b, "Primary Injuries: %s\n", strings.Join(injuries, ", "))
	}
	if len(complications) > 0 {
		fmt.Fprintf(&b, "Major Complications: %s\n", strings.Join(complications, ", "))
	}
	return b.String()
}

func pageAnchorCounter(pages []domain.Page) claimguard.AnchorCounter {
	return func(term string) int {
		low := strings.ToLower(term)
		count := 0
		for _, p := range pages {
			if strings.Contains(strings.ToLower(p.Text), low) {
				count++
			}
		}
		return count
	}
}

func artifactRef(data []byte) domain.ArtifactRef {
	sum := sha256.Sum256(data)
	return domain.ArtifactRef{SHA256: hex.EncodeToString(sum[:]), Bytes: int64(len(data))}
}

func mergeMetric(metrics map[string]any, key string, value any) map[string]any {
	if metrics == nil {
		metrics = make(map[string]any)
	}
	metrics[key] = value
	return metrics
}
