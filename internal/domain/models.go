package domain

import (
	"time"
)

// SourceDocument is an externally-created record of one uploaded PDF.
type SourceDocument struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	SHA256     string    `json:"sha256"`
	Bytes      int64     `json:"bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// BoundingBox locates a snippet on a rendered page, in PDF points.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// IsZero reports whether b carries no real geometry, triggering the
// BBOX_FALLBACK warning path in the citation post-processor.
func (b BoundingBox) IsZero() bool {
	return b.X == 0 && b.Y == 0 && b.W == 0 && b.H == 0
}

// Layout carries optional per-page geometry hints used by extractors that
// need column/line structure (e.g. tabular billing pages).
type Layout struct {
	Lines []LayoutLine `json:"lines,omitempty"`
}

// LayoutLine is one recognized line of text with its vertical position.
type LayoutLine struct {
	Text string  `json:"text"`
	Y    float64 `json:"y"`
}

// Page is one page of OCR'd or embedded text from a SourceDocument.
type Page struct {
	PageID           string     `json:"page_id"`
	SourceDocumentID string     `json:"source_document_id"`
	PageNumber       int        `json:"page_number"`
	Text             string     `json:"text"`
	TextSource       TextSource `json:"text_source"`
	PageType         PageType   `json:"page_type"`
	Confidence       int        `json:"confidence"`
	Layout           *Layout    `json:"layout,omitempty"`
}

// Span is one contiguous run of pages sharing a page type within a Document.
type Span struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Type  PageType `json:"type"`
}

// Document is a contiguous-page segment of one semantic class (§4.C).
type Document struct {
	DocumentID       string     `json:"document_id"`
	SourceDocumentID string     `json:"source_document_id"`
	PageStart        int        `json:"page_start"`
	PageEnd          int        `json:"page_end"`
	PageTypes        []Span     `json:"page_types"`
	DeclaredType     PageType   `json:"declared_type"`
	Confidence       int        `json:"confidence"`
}

// ProviderEvidence anchors a detected provider candidate to its source page.
type ProviderEvidence struct {
	Page    int         `json:"page"`
	Snippet string      `json:"snippet"`
	BBox    BoundingBox `json:"bbox"`
}

// Provider is a facility or clinician resolved from one or more page
// candidates clustered by normalized-name similarity (§4.D).
type Provider struct {
	ProviderID      string             `json:"provider_id"`
	DetectedNameRaw string             `json:"detected_name_raw"`
	NormalizedName  string             `json:"normalized_name"`
	ProviderType    ProviderType       `json:"provider_type"`
	Confidence      int                `json:"confidence"`
	Evidence        []ProviderEvidence `json:"evidence"`
}

// EventDate is a tagged union over the four date shapes the extractors can
// produce. Exactly one of Single/RangeStart/Relative/Partial applies,
// selected by Kind.
type EventDate struct {
	Kind DateKind `json:"kind"`

	Single *time.Time `json:"single,omitempty"`

	RangeStart *time.Time `json:"range_start,omitempty"`
	RangeEnd   *time.Time `json:"range_end,omitempty"`

	AnchorEventID string `json:"anchor_event_id,omitempty"`
	OffsetDays    int    `json:"offset_days,omitempty"`

	PartialMonth *int `json:"partial_month,omitempty"`
	PartialDay   *int `json:"partial_day,omitempty"`
	PartialYear  *int `json:"partial_year,omitempty"`

	Source DateSource `json:"source"`
	Time   string     `json:"time,omitempty"` // HHMM, optional
}

// DateKind discriminates the EventDate tagged union.
type DateKind string

const (
	DateKindSingle   DateKind = "single"
	DateKindRange    DateKind = "range"
	DateKindRelative DateKind = "relative"
	DateKindPartial  DateKind = "partial"
)

// IsFinite reports whether the date resolves to a concrete calendar date
// that can be sorted into the timeline (a Single value, or a Range with a
// start).
func (d EventDate) IsFinite() bool {
	switch d.Kind {
	case DateKindSingle:
		return d.Single != nil
	case DateKindRange:
		return d.RangeStart != nil
	default:
		return false
	}
}

// SortKey returns the date used to order events; relative/partial dates
// that have not been resolved to a concrete date sort last (zero time).
func (d EventDate) SortKey() time.Time {
	switch d.Kind {
	case DateKindSingle:
		if d.Single != nil {
			return *d.Single
		}
	case DateKindRange:
		if d.RangeStart != nil {
			return *d.RangeStart
		}
	}
	return time.Time{}
}

// Citation ties a verbatim snippet to its page of origin, with a content
// hash for dedup/idempotence and a bounding box for visual anchoring.
type Citation struct {
	CitationID       string      `json:"citation_id"`
	SourceDocumentID string      `json:"source_document_id"`
	PageNumber       int         `json:"page_number"`
	Snippet          string      `json:"snippet"`
	BBox             BoundingBox `json:"bbox"`
	TextHash         string      `json:"text_hash"`
}

// Fact is one atomic, verbatim-anchored assertion extracted from a page.
type Fact struct {
	Text       string   `json:"text"`
	Kind       FactKind `json:"kind"`
	Verbatim   bool     `json:"verbatim"`
	CitationID string   `json:"citation_id"`
}

// Event is the typed, cited record of one clinical encounter or
// administrative occurrence.
type Event struct {
	EventID           string         `json:"event_id"`
	ProviderID        string         `json:"provider_id,omitempty"`
	EventType         EventType      `json:"event_type"`
	Date              EventDate      `json:"date"`
	EncounterTypeRaw  string         `json:"encounter_type_raw,omitempty"`
	Facts             []Fact         `json:"facts"`
	Diagnoses         []string       `json:"diagnoses,omitempty"`
	Procedures        []string       `json:"procedures,omitempty"`
	Imaging           *ImagingDetail `json:"imaging,omitempty"`
	Billing           *BillingDetail `json:"billing,omitempty"`
	Confidence        int            `json:"confidence"`
	Flags             map[string]bool `json:"flags,omitempty"`
	CitationIDs       []string       `json:"citation_ids"`
	SourcePageNumbers []int          `json:"source_page_numbers"`
	Extensions        map[string]any `json:"extensions,omitempty"`
}

// PatientScopeID returns the event's patient-scope extension, defaulting to
// the "Unknown Patient" sentinel per §3 when unset.
func (e *Event) PatientScopeID() string {
	if e.Extensions == nil {
		return UnknownPatientLabel
	}
	if v, ok := e.Extensions["patient_scope_id"].(string); ok && v != "" {
		return v
	}
	return UnknownPatientLabel
}

// UnknownPatientLabel is the canonical sentinel for events that could not be
// attributed to a named patient (Open Question 2: stays in the evidence
// graph, excluded only from the client-facing projection).
const UnknownPatientLabel = "Unknown Patient"

// HasFlag reports whether flag is set on the event.
func (e *Event) HasFlag(flag string) bool {
	return e.Flags != nil && e.Flags[flag]
}

// SetFlag adds flag to the event's flag set, initializing it if needed.
func (e *Event) SetFlag(flag string) {
	if e.Flags == nil {
		e.Flags = make(map[string]bool)
	}
	e.Flags[flag] = true
}

// ImagingDetail carries the structured parse of an imaging report.
type ImagingDetail struct {
	Modality   string `json:"modality,omitempty"`
	BodyRegion string `json:"body_region,omitempty"`
	Impression string `json:"impression,omitempty"`
}

// BillingDetail carries the structured parse of a billing line or ledger.
type BillingDetail struct {
	AmountType string   `json:"amount_type,omitempty"`
	AmountCents int64   `json:"amount_cents,omitempty"`
	CPTCodes   []string `json:"cpt_codes,omitempty"`
	HCPCSCodes []string `json:"hcpcs_codes,omitempty"`
	ICD10Codes []string `json:"icd10_codes,omitempty"`
	RevenueCodes []string `json:"revenue_codes,omitempty"`
}

// Gap is a detected treatment-continuity gap between two adjacent events in
// a single patient scope (§4.J).
type Gap struct {
	GapID           string   `json:"gap_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	DurationDays    int      `json:"duration_days"`
	ThresholdDays   int      `json:"threshold_days"`
	Confidence      int      `json:"confidence"`
	RationaleTag    string   `json:"rationale_tag"`
	RelatedEventIDs [2]string `json:"related_event_ids"`
	Collapsed       bool     `json:"collapsed,omitempty"`
	CollapsedCount  int      `json:"collapsed_count,omitempty"`
}

// ChronologyProjectionEntry is the rendering-layer view of one (possibly
// merged) exportable event (§3, §4.K).
type ChronologyProjectionEntry struct {
	EventID           string   `json:"event_id"`
	DateDisplay       string   `json:"date_display"`
	SortDate          time.Time `json:"-"`
	ProviderDisplay   string   `json:"provider_display"`
	EventTypeDisplay  string   `json:"event_type_display"`
	PatientLabel      string   `json:"patient_label"`
	Facts             []string `json:"facts"`
	CitationDisplay   string   `json:"citation_display"`
	Confidence        int      `json:"confidence"`
	Synthesized       bool     `json:"synthesized,omitempty"`
	SourcePageNumbers []int    `json:"source_page_numbers,omitempty"`
	SourceDocumentID  string   `json:"source_document_id,omitempty"`
}

// Get provides dict-like tolerant access for migration-era call sites
// (Design Note "Dict-as-object call sites"), returning default when field is
// not a recognized projection column.
func (e *ChronologyProjectionEntry) Get(field string, def any) any {
	switch field {
	case "event_id":
		return e.EventID
	case "date_display":
		return e.DateDisplay
	case "provider_display":
		return e.ProviderDisplay
	case "event_type_display":
		return e.EventTypeDisplay
	case "patient_label":
		return e.PatientLabel
	case "confidence":
		return e.Confidence
	default:
		return def
	}
}

// ClaimEdge is one atomic litigation assertion tied back to an Event,
// scored for selection into the Top-10 case-driving list (§3, SPEC_FULL
// claimledger supplement).
type ClaimEdge struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	PatientLabel     string    `json:"patient_label"`
	ClaimType        ClaimType `json:"claim_type"`
	Date             time.Time `json:"date"`
	BodyRegion       string    `json:"body_region,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	Assertion        string    `json:"assertion"`
	Citations        []string  `json:"citations"`
	SupportScore     int       `json:"support_score"`
	Flags            []string  `json:"flags,omitempty"`
	MaterialityWeight int      `json:"materiality_weight"`
}

// SelectionScore is the ranking key used to build the Top-10 list.
func (c *ClaimEdge) SelectionScore() int {
	return c.SupportScore * c.MaterialityWeight
}

// Get provides dict-like tolerant access (Design Note "Dict-as-object call
// sites"), mirroring ChronologyProjectionEntry.Get.
func (c *ClaimEdge) Get(field string, def any) any {
	switch field {
	case "claim_type":
		return c.ClaimType
	case "support_score":
		return c.SupportScore
	case "materiality_weight":
		return c.MaterialityWeight
	case "selection_score":
		return c.SelectionScore()
	default:
		return def
	}
}

// Warning is a non-fatal anomaly surfaced to the run's output (§6 taxonomy).
type Warning struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Page       *int   `json:"page,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// Warning codes, stable per §6.
const (
	WarnInvalidMimeType      = "INVALID_MIME_TYPE"
	WarnInvalidSHA256        = "INVALID_SHA256"
	WarnEmptyDocument        = "EMPTY_DOCUMENT"
	WarnOCRDisabled          = "OCR_DISABLED"
	WarnOCRUnavailable       = "OCR_UNAVAILABLE"
	WarnOCRTimeout           = "OCR_TIMEOUT"
	WarnOCRQualityLow        = "OCR_QUALITY_LOW"
	WarnOCRNoText            = "OCR_NO_TEXT"
	WarnOCRBudgetExceeded    = "OCR_BUDGET_EXCEEDED"
	WarnBBoxFallback         = "BBOX_FALLBACK"
	WarnNoProvidersDetected  = "NO_PROVIDERS_DETECTED"
	WarnSchemaValidationErr  = "SCHEMA_VALIDATION_ERROR"
	WarnLitigationReviewFail = "LITIGATION_REVIEW_FAIL"
)

// Provenance records the inputs/outputs/tooling identity of one run, for the
// determinism and idempotence properties in §8.
type Provenance struct {
	PipelineVersion string `json:"pipeline_version"`
	Extractor       string `json:"extractor"`
	OCREngine       string `json:"ocr_engine"`
	InputsSHA256    string `json:"inputs_sha256"`
	OutputsSHA256   string `json:"outputs_sha256"`
}

// Run is the top-level lifecycle record for one pipeline execution.
type Run struct {
	RunID        string         `json:"run_id"`
	Status       RunStatus      `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at,omitempty"`
	Config       RunConfig      `json:"config"`
	Metrics      map[string]any `json:"metrics,omitempty"`
	Warnings     []Warning      `json:"warnings,omitempty"`
	Provenance   Provenance     `json:"provenance"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// RunConfig enumerates exactly the options named in §6.
type RunConfig struct {
	MaxPages                     int                   `json:"max_pages" mapstructure:"max_pages"`
	PTMode                       PTMode                `json:"pt_mode" mapstructure:"pt_mode"`
	GapThresholdDays             int                   `json:"gap_threshold_days" mapstructure:"gap_threshold_days"`
	EventConfidenceMinExport     int                   `json:"event_confidence_min_export" mapstructure:"event_confidence_min_export"`
	LowConfidenceEventBehavior   LowConfidenceBehavior `json:"low_confidence_event_behavior" mapstructure:"low_confidence_event_behavior"`
	IncludeBillingEventsInTimeline bool                `json:"include_billing_events_in_timeline" mapstructure:"include_billing_events_in_timeline"`
}

// DefaultRunConfig returns the §6 documented defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxPages:                       500,
		PTMode:                         PTModeAggregate,
		GapThresholdDays:               45,
		EventConfidenceMinExport:       60,
		LowConfidenceEventBehavior:     ExcludeFromExport,
		IncludeBillingEventsInTimeline: false,
	}
}

// EvidenceGraph is the complete typed output of the extraction pipeline
// (stages A-J), consumed by the projection/QA/render layers.
type EvidenceGraph struct {
	RunID      string       `json:"run_id"`
	Pages      []Page       `json:"pages"`
	Documents  []Document   `json:"documents"`
	Providers  []Provider   `json:"providers"`
	Events     []Event      `json:"events"`
	Citations  []Citation   `json:"citations"`
	Gaps       []Gap        `json:"gaps"`
	ClaimEdges []ClaimEdge  `json:"claim_edges,omitempty"`
}

// ArtifactRef describes one written, content-addressed artifact file.
type ArtifactRef struct {
	URI    string `json:"uri"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// ChronologyOutput bundles the rendered exports and QA reports for a run.
type ChronologyOutput struct {
	Exports        ExportSet      `json:"exports"`
	RenderManifest RenderManifest `json:"render_manifest"`
	Checklist      ChecklistResult `json:"checklist"`
}

// ExportSet is the §6 ChronologyOutput.exports field.
type ExportSet struct {
	PDF  ArtifactRef  `json:"pdf"`
	CSV  ArtifactRef  `json:"csv"`
	DOCX ArtifactRef  `json:"docx"`
	JSON *ArtifactRef `json:"json,omitempty"`
}

// RenderManifest is the §6 render_manifest.json contract.
type RenderManifest struct {
	ChronAnchors    []string            `json:"chron_anchors"`
	AppendixAnchors []string            `json:"appendix_anchors"`
	ForwardLinks    map[string][]string `json:"forward_links"`
	BackLinks       map[string][]string `json:"back_links"`
}

// PipelineInputs is the §6 input contract.
type PipelineInputs struct {
	SourceDocuments []SourceDocument `json:"source_documents"`
	Config          RunConfig        `json:"config"`
}

// PipelineOutputs is the §6 output contract.
type PipelineOutputs struct {
	Run           Run              `json:"run"`
	EvidenceGraph EvidenceGraph    `json:"evidence_graph"`
	Chronology    ChronologyOutput `json:"chronology"`
}

// QAFailure is one failed gate/rule from a quality scorer or the litigation
// checklist, always carrying enough cited evidence to act on (§4.N, §4.O).
type QAFailure struct {
	Code     string   `json:"code"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Examples []string `json:"examples,omitempty"`
}

// QAReport is the common pure-function return shape of the three quality
// scorers (§4.N): pass/fail, a 0-100 score, cited failures, and metrics.
type QAReport struct {
	Pass     bool            `json:"pass"`
	Score    int             `json:"score_0_100"`
	Failures []QAFailure     `json:"failures"`
	Metrics  map[string]any  `json:"metrics,omitempty"`
}

// ChecklistResult is the master litigation-checklist output (§4.O): the
// three QAReport fields plus per-patient metrics and the overall gate
// breakdown (hard/quality/semantic/usability/final-render).
type ChecklistResult struct {
	QAReport
	HardPass     bool              `json:"hard_pass"`
	QualityPass  bool              `json:"quality_pass"`
	PerPatient   map[string]any    `json:"per_patient,omitempty"`
}
