package persistence

import "github.com/citeline/chronology-core/internal/domain"

// upsertRunStatement builds the idempotent run-status upsert: re-invoking a
// run_id overwrites the previous row wholesale (§5 "stale-run recovery")
// rather than merging, so every column but run_id/started_at is always
// included in the SET clause.
func upsertRunStatement(run *domain.Run, config, metrics, warnings, provenance []byte) (string, []any) {
	const query = `
		INSERT INTO runs (run_id, status, started_at, finished_at, config, metrics, warnings, provenance, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO UPDATE SET
			status        = EXCLUDED.status,
			finished_at   = EXCLUDED.finished_at,
			config        = EXCLUDED.config,
			metrics       = EXCLUDED.metrics,
			warnings      = EXCLUDED.warnings,
			provenance    = EXCLUDED.provenance,
			error_message = EXCLUDED.error_message`

	var finishedAt any
	if !run.FinishedAt.IsZero() {
		finishedAt = run.FinishedAt
	}

	args := []any{
		run.RunID, string(run.Status), run.StartedAt, finishedAt,
		config, metrics, warnings, provenance, run.ErrorMessage,
	}
	return query, args
}
