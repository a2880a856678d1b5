package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/citeline/chronology-core/internal/database"
	"github.com/citeline/chronology-core/internal/domain"
)

func setupTestRepository(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := domain.DatabaseConfig{
		Host: host, Port: port.Int(), Database: "testdb",
		Username: "testuser", Password: "testpass", SSLMode: "disable",
		MaxOpenConns: 5, MaxIdleConns: 1,
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, cfg, logger)
	require.NoError(t, err)

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	repo := NewRepository(db.Pool, logger)

	cleanup := func() {
		db.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return repo, cleanup
}

func TestRepositorySaveAndLoadRunIsIdempotent(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	ctx := context.Background()
	run := &domain.Run{
		RunID:     "run-abc",
		Status:    domain.RunRunning,
		StartedAt: time.Now(),
		Config:    domain.DefaultRunConfig(),
	}

	require.NoError(t, repo.SaveRun(ctx, run))

	run.Status = domain.RunSuccess
	run.FinishedAt = time.Now()
	require.NoError(t, repo.SaveRun(ctx, run))

	loaded, err := repo.LoadRun(ctx, "run-abc")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSuccess, loaded.Status)
	assert.False(t, loaded.FinishedAt.IsZero())
}

func TestRepositorySaveEvidenceGraphReplacesPriorGraph(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	ctx := context.Background()
	run := &domain.Run{RunID: "run-xyz", Status: domain.RunRunning, StartedAt: time.Now(), Config: domain.DefaultRunConfig()}
	require.NoError(t, repo.SaveRun(ctx, run))

	first := &domain.EvidenceGraph{RunID: "run-xyz", Events: []domain.Event{{EventID: "e1"}}}
	require.NoError(t, repo.SaveEvidenceGraph(ctx, "run-xyz", first))

	second := &domain.EvidenceGraph{RunID: "run-xyz", Events: []domain.Event{{EventID: "e2"}, {EventID: "e3"}}}
	require.NoError(t, repo.SaveEvidenceGraph(ctx, "run-xyz", second))

	loaded, err := repo.LoadEvidenceGraph(ctx, "run-xyz")
	require.NoError(t, err)
	assert.Len(t, loaded.Events, 2)
	assert.Equal(t, "e2", loaded.Events[0].EventID)
}

func TestRepositoryLoadRunNotFound(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	_, err := repo.LoadRun(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
