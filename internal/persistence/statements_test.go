package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeline/chronology-core/internal/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

// TestUpsertRunStatementIsIdempotent exercises the same ON CONFLICT upsert
// Repository.SaveRun issues against pgx, against a database/sql mock, to
// pin down that re-saving a run_id always overwrites every mutable column
// rather than merging (§5 "stale-run recovery").
func TestUpsertRunStatementIsIdempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	run := &domain.Run{
		RunID:      "run-42",
		Status:     domain.RunSuccess,
		StartedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
	}
	query, args := upsertRunStatement(run, []byte(`{}`), []byte(`{}`), []byte(`[]`), []byte(`{}`))

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := db.Exec(query, args...)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRunStatementNullsUnfinishedRun(t *testing.T) {
	run := &domain.Run{RunID: "run-pending", Status: domain.RunRunning, StartedAt: time.Now().UTC()}
	_, args := upsertRunStatement(run, nil, nil, nil, nil)

	require.Len(t, args, 9)
	assert.Nil(t, args[3], "finished_at must stay NULL until the run reaches a terminal status")
}
