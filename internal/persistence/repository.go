// Package persistence implements domain.Repository: idempotent, per-run_id
// storage of a run's evidence graph and artifact references.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/citeline/chronology-core/internal/domain"
)

// Repository persists runs, evidence graphs, and artifact refs in Postgres.
type Repository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewRepository builds a Repository around an established connection pool.
func NewRepository(db *pgxpool.Pool, logger *logrus.Logger) *Repository {
	return &Repository{db: db, log: logger}
}

var _ domain.Repository = (*Repository)(nil)

// SaveRun upserts the run's status row. Re-invoking a run_id overwrites the
// previous row wholesale (§5 "stale-run recovery") rather than merging.
func (r *Repository) SaveRun(ctx context.Context, run *domain.Run) error {
	config, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("marshal run config: %w", err)
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("marshal run metrics: %w", err)
	}
	warnings, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("marshal run warnings: %w", err)
	}
	provenance, err := json.Marshal(run.Provenance)
	if err != nil {
		return fmt.Errorf("marshal run provenance: %w", err)
	}

	query, args := upsertRunStatement(run, config, metrics, warnings, provenance)

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{"run_id": run.RunID, "error": err}).Error("failed to save run")
		return fmt.Errorf("saving run %s: %w", run.RunID, err)
	}
	return nil
}

// SaveEvidenceGraph replaces the stored evidence graph for a run in a single
// upsert, so re-invoking the same run_id discards the prior graph entirely.
func (r *Repository) SaveEvidenceGraph(ctx context.Context, runID string, graph *domain.EvidenceGraph) error {
	data, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("marshal evidence graph: %w", err)
	}

	const query = `
		INSERT INTO evidence_graphs (run_id, graph, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (run_id) DO UPDATE SET graph = EXCLUDED.graph, updated_at = now()`

	if _, err := r.db.Exec(ctx, query, runID, data); err != nil {
		r.log.WithFields(logrus.Fields{"run_id": runID, "error": err}).Error("failed to save evidence graph")
		return fmt.Errorf("saving evidence graph for %s: %w", runID, err)
	}
	return nil
}

// SaveArtifactRefs replaces the stored export refs for a run.
func (r *Repository) SaveArtifactRefs(ctx context.Context, runID string, exports domain.ExportSet) error {
	data, err := json.Marshal(exports)
	if err != nil {
		return fmt.Errorf("marshal artifact refs: %w", err)
	}

	const query = `
		INSERT INTO artifact_refs (run_id, exports, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (run_id) DO UPDATE SET exports = EXCLUDED.exports, updated_at = now()`

	if _, err := r.db.Exec(ctx, query, runID, data); err != nil {
		r.log.WithFields(logrus.Fields{"run_id": runID, "error": err}).Error("failed to save artifact refs")
		return fmt.Errorf("saving artifact refs for %s: %w", runID, err)
	}
	return nil
}

// LoadRun fetches a run's status row.
func (r *Repository) LoadRun(ctx context.Context, runID string) (*domain.Run, error) {
	const query = `
		SELECT run_id, status, started_at, finished_at, config, metrics, warnings, provenance, error_message
		FROM runs WHERE run_id = $1`

	var run domain.Run
	var status string
	var config, metrics, warnings, provenance []byte

	err := r.db.QueryRow(ctx, query, runID).Scan(
		&run.RunID, &status, &run.StartedAt, &run.FinishedAt,
		&config, &metrics, &warnings, &provenance, &run.ErrorMessage,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("run %s: %w", runID, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{"run_id": runID, "error": err}).Error("failed to load run")
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}

	run.Status = domain.RunStatus(status)
	if err := json.Unmarshal(config, &run.Config); err != nil {
		return nil, fmt.Errorf("unmarshal run config: %w", err)
	}
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &run.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal run metrics: %w", err)
		}
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &run.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal run warnings: %w", err)
		}
	}
	if err := json.Unmarshal(provenance, &run.Provenance); err != nil {
		return nil, fmt.Errorf("unmarshal run provenance: %w", err)
	}

	return &run, nil
}

// LoadEvidenceGraph fetches a run's stored evidence graph.
func (r *Repository) LoadEvidenceGraph(ctx context.Context, runID string) (*domain.EvidenceGraph, error) {
	const query = `SELECT graph FROM evidence_graphs WHERE run_id = $1`

	var data []byte
	if err := r.db.QueryRow(ctx, query, runID).Scan(&data); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("evidence graph for %s: %w", runID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("loading evidence graph for %s: %w", runID, err)
	}

	var graph domain.EvidenceGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("unmarshal evidence graph: %w", err)
	}
	return &graph, nil
}
