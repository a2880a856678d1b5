// Package domain contains the core evidence-graph entities produced by the
// chronology extraction pipeline, plus the enums and validation rules that
// keep those entities internally consistent across stages.
package domain

import (
	"errors"
	"fmt"
)

// TextSource records how a page's text was obtained.
type TextSource string

const (
	TextEmbedded TextSource = "embedded"
	TextOCR      TextSource = "ocr"
	TextOCRCache TextSource = "ocr_cache"
)

// PageType is the classifier's output label for a single page.
type PageType string

const (
	PageClinicalNote      PageType = "clinical_note"
	PageOperativeReport   PageType = "operative_report"
	PageImagingReport     PageType = "imaging_report"
	PagePTNote            PageType = "pt_note"
	PageBilling           PageType = "billing"
	PageAdministrative    PageType = "administrative"
	PageLab               PageType = "lab"
	PageDischargeSummary  PageType = "discharge_summary"
	PageOther             PageType = "other"
)

// classPriority breaks page-classifier ties; lower index wins.
var classPriority = []PageType{
	PageBilling, PageImagingReport, PageOperativeReport, PagePTNote,
	PageLab, PageDischargeSummary, PageClinicalNote, PageAdministrative, PageOther,
}

// ClassPriorityRank returns the tiebreak rank of a page type (lower wins);
// unknown types sort last.
func ClassPriorityRank(t PageType) int {
	for i, c := range classPriority {
		if c == t {
			return i
		}
	}
	return len(classPriority)
}

// ProviderType classifies a detected provider.
type ProviderType string

const (
	ProviderPhysician  ProviderType = "physician"
	ProviderHospital   ProviderType = "hospital"
	ProviderImaging    ProviderType = "imaging"
	ProviderPT         ProviderType = "pt"
	ProviderER         ProviderType = "er"
	ProviderPCP        ProviderType = "pcp"
	ProviderSpecialist ProviderType = "specialist"
	ProviderUnknown    ProviderType = "unknown"
)

// DateSource is the four-tier ranking of how a date was derived (§4.E).
// Higher tiers are more authoritative; ordering matters for date selection.
type DateSource string

const (
	DateTier1      DateSource = "tier1"
	DateTier2      DateSource = "tier2"
	DatePropagated DateSource = "propagated"
	DateAnchor     DateSource = "anchor"
)

// Rank returns the source's authority, highest first (tier1=3 ... anchor=0).
func (s DateSource) Rank() int {
	switch s {
	case DateTier1:
		return 3
	case DateTier2:
		return 2
	case DatePropagated:
		return 1
	default:
		return 0
	}
}

// FactKind is the semantic role a Fact plays within an Event.
type FactKind string

const (
	FactChiefComplaint FactKind = "chief_complaint"
	FactAssessment     FactKind = "assessment"
	FactPlan           FactKind = "plan"
	FactDiagnosis      FactKind = "diagnosis"
	FactMedication     FactKind = "medication"
	FactImpression     FactKind = "impression"
	FactFinding        FactKind = "finding"
	FactProcedureNote  FactKind = "procedure_note"
	FactBillingItem    FactKind = "billing_item"
	FactRestriction    FactKind = "restriction"
	FactLab            FactKind = "lab"
	FactProcedure      FactKind = "procedure"
	FactProvider       FactKind = "provider"
	FactROMValue       FactKind = "rom_value"
	FactStrengthGrade  FactKind = "strength_grade"
	FactPainScore      FactKind = "pain_score"
	FactNeuroSymptom   FactKind = "neuro_symptom"
	FactOther          FactKind = "other"
)

// NarrativeFactKinds are the kinds the confidence scorer rewards (§4.I).
var NarrativeFactKinds = map[FactKind]bool{
	FactChiefComplaint: true,
	FactAssessment:     true,
	FactPlan:           true,
	FactImpression:     true,
}

// EventType is the typed classification of an extracted encounter.
type EventType string

const (
	EventOfficeVisit        EventType = "office_visit"
	EventPTVisit             EventType = "pt_visit"
	EventImagingStudy        EventType = "imaging_study"
	EventProcedure           EventType = "procedure"
	EventLabResult           EventType = "lab_result"
	EventERVisit             EventType = "er_visit"
	EventHospitalAdmission   EventType = "hospital_admission"
	EventHospitalDischarge   EventType = "hospital_discharge"
	EventInpatientDailyNote  EventType = "inpatient_daily_note"
	EventBillingEvent        EventType = "billing_event"
	EventWorkStatus          EventType = "work_status"
	EventAdministrative      EventType = "administrative"
	EventOther               EventType = "other"
)

// HighValueEventTypes get the §4.I confidence bonus for encounter strength.
var HighValueEventTypes = map[EventType]bool{
	EventERVisit:           true,
	EventHospitalAdmission: true,
	EventHospitalDischarge: true,
	EventProcedure:         true,
}

// ClaimType enumerates the atomic assertion categories tracked by the claim
// ledger (§3 ClaimEdge, SPEC_FULL claimledger supplement).
type ClaimType string

const (
	ClaimInjuryDx          ClaimType = "INJURY_DX"
	ClaimSymptom           ClaimType = "SYMPTOM"
	ClaimImagingFinding    ClaimType = "IMAGING_FINDING"
	ClaimProcedure         ClaimType = "PROCEDURE"
	ClaimMedicationChange  ClaimType = "MEDICATION_CHANGE"
	ClaimWorkRestriction   ClaimType = "WORK_RESTRICTION"
	ClaimTreatmentVisit    ClaimType = "TREATMENT_VISIT"
	ClaimGapInCare         ClaimType = "GAP_IN_CARE"
	ClaimPreExisting       ClaimType = "PRE_EXISTING_MENTION"
)

// RunStatus is the lifecycle state of a Run. Transitions are monotonic:
// pending -> running -> {success, partial, failed}.
type RunStatus string

const (
	RunPending RunStatus = "pending"
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)

// CanTransitionTo reports whether the lifecycle monotonicity invariant
// allows moving from s to next.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	order := map[RunStatus]int{RunPending: 0, RunRunning: 1, RunSuccess: 2, RunPartial: 2, RunFailed: 2}
	cur, ok1 := order[s]
	nxt, ok2 := order[next]
	if !ok1 || !ok2 {
		return false
	}
	if cur == 2 && next != s {
		return false
	}
	return nxt >= cur
}

// PTMode selects whether the PT extractor aggregates a course of therapy
// into one event or emits one event per visit (RunConfig.PTMode).
type PTMode string

const (
	PTModeAggregate PTMode = "aggregate"
	PTModePerVisit  PTMode = "per_visit"
)

// LowConfidenceBehavior governs export filtering of LOW_CONFIDENCE events.
type LowConfidenceBehavior string

const (
	ExcludeFromExport  LowConfidenceBehavior = "exclude_from_export"
	IncludeWithFlag    LowConfidenceBehavior = "include_with_flag"
)

// Bucket is a required-content category the projection must cover when the
// source packet contains it (§4.L).
type Bucket string

const (
	BucketED      Bucket = "ED"
	BucketMRI     Bucket = "MRI"
	BucketProc    Bucket = "procedure"
	BucketOrtho   Bucket = "ortho"
	BucketPTEval  Bucket = "pt_eval"
)

// Validation errors shared across domain entities.
var (
	ErrNotFound           = errors.New("not found")
	ErrEmptyRun            = errors.New("run contains zero valid source documents")
	ErrInvalidDateRange    = errors.New("event date out of sane range")
)

// IsValid reports whether t is one of the classifier's known page types.
func (t PageType) IsValid() bool {
	switch t {
	case PageClinicalNote, PageOperativeReport, PageImagingReport, PagePTNote,
		PageBilling, PageAdministrative, PageLab, PageDischargeSummary, PageOther:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is a closed-enumeration run status.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunPending, RunRunning, RunSuccess, RunPartial, RunFailed:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for structured logging fields.
func (s RunStatus) String() string { return string(s) }

// ValidateYear enforces the §3 invariant that finite event dates are
// strictly bounded: 1970 <= year <= currentYear.
func ValidateYear(year, currentYear int) error {
	if year < 1970 || year > currentYear {
		return fmt.Errorf("%w: year=%d", ErrInvalidDateRange, year)
	}
	return nil
}
