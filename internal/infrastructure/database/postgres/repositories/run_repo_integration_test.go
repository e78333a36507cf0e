//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/database/postgres"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// startPostgres launches a PostgreSQL 16 container, applies the embedded
// migrations and returns a connection.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "lipinski_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Enabled:  true,
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		DBName:   "lipinski_test",
		SSLMode:  "disable",
	}
	full := &config.Config{Database: cfg}
	config.ApplyDefaults(full)
	cfg = full.Database

	conn, err := postgres.NewConnection(ctx, cfg, nil)
	require.NoError(t, err, fmt.Sprintf("connect to %s:%d", host, port.Int()))
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, postgres.NewMigrator(conn, nil).Up())
	return conn
}

func TestRunRepo_Integration(t *testing.T) {
	conn := startPostgres(t)
	repo := repositories.NewPostgresRunRepo(conn, nil)
	ctx := context.Background()

	report := &compound.AnalysisReport{
		Columns:      []string{"SMILES"},
		SmilesColumn: "SMILES",
		Rows: []compound.AnalysisRow{
			{Index: 0, Valid: true, Result: compound.ResultPass},
			{Index: 1, Result: compound.ResultInvalid},
		},
	}
	older := compound.NewAnalysisRun("old.csv", report, true, time.Second)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := compound.NewAnalysisRun("new.csv", report, false, 2*time.Second)

	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))
	assert.True(t, errors.IsCode(repo.Save(ctx, newer), errors.ErrCodeConflict))

	got, err := repo.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, compound.Counts{Total: 2, Valid: 1, Invalid: 1, Pass: 1}, got.Counts)
	assert.False(t, got.Detected)
	assert.Equal(t, 2*time.Second, got.Duration)

	runs, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)

	require.NoError(t, repo.SetExportKey(ctx, older.ID, "exports/old.csv"))
	got, err = repo.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "exports/old.csv", got.ExportKey)

	_, err = repo.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.IsCode(err, errors.ErrCodeRunNotFound))
}

func TestMigrator_Integration(t *testing.T) {
	conn := startPostgres(t)
	m := postgres.NewMigrator(conn, nil)

	version, dirty, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(), "re-running Up is a no-op")
	require.NoError(t, m.Rollback(1))

	version, _, err = m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

//Personal.AI order the ending
