package domain

import "context"

// StageRunner is the shape of one extraction-pipeline stage: a named step
// that updates the evidence graph and reports warnings. No type in this
// module implements it; Orchestrator.Run calls the stage packages directly,
// in a fixed order.
type StageRunner interface {
	Name() string
	Run(ctx context.Context, graph *EvidenceGraph, cfg RunConfig) ([]Warning, error)
}

// QualityScorer is implemented by the three independent quality gates
// (component N: LUQA, Attorney-Readiness, Legal-Usability). Each is a pure
// function of the rendered report text and the run's evidence graph.
type QualityScorer interface {
	Name() string
	Score(reportText string, graph *EvidenceGraph, projection []ChronologyProjectionEntry) QAReport
}

// ArtifactRenderer produces one deterministic, byte-stable export format
// from a completed chronology (component P).
type ArtifactRenderer interface {
	Render(graph *EvidenceGraph, projection []ChronologyProjectionEntry, checklist ChecklistResult) ([]byte, error)
	ContentType() string
}

// Repository persists one run's evidence graph and artifacts idempotently,
// replacing all child rows for a re-invoked run_id (§5 "Stale-run recovery").
type Repository interface {
	SaveRun(ctx context.Context, run *Run) error
	SaveEvidenceGraph(ctx context.Context, runID string, graph *EvidenceGraph) error
	SaveArtifactRefs(ctx context.Context, runID string, exports ExportSet) error
	LoadRun(ctx context.Context, runID string) (*Run, error)
}

// ConfigManager defines the interface for configuration management.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	GetOCRConfig() *OCRConfig
	GetCacheConfig() *CacheConfig
	Validate() error
	GetDatabaseConnectionString() string
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}

// OCREngine is the black-box collaborator described in §1: given a page
// image, returns its text and how it was obtained. The core never assumes
// anything about its implementation.
type OCREngine interface {
	TextFor(ctx context.Context, sourceDocumentID string, pageNumber int, dpi int) (text string, source TextSource, err error)
}
