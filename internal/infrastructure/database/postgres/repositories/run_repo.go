package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/database/postgres"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

const runColumns = `id, file_name, smiles_column, detected, total_rows, valid_rows, invalid_rows,
	pass_rows, fail_rows, export_key, duration_ms, created_at`

type postgresRunRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresRunRepo returns a compound.RunRepository over conn.
func NewPostgresRunRepo(conn *postgres.Connection, log logging.Logger) compound.RunRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresRunRepo{conn: conn, log: log}
}

func (r *postgresRunRepo) executor() queryExecutor {
	return r.conn.DB()
}

func (r *postgresRunRepo) Save(ctx context.Context, run *compound.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.executor().ExecContext(ctx, query,
		run.ID, run.FileName, run.SmilesColumn, run.Detected,
		run.Counts.Total, run.Counts.Valid, run.Counts.Invalid, run.Counts.Pass, run.Counts.Fail,
		run.ExportKey, run.Duration.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errors.Newf(errors.ErrCodeConflict, "analysis run %s already exists", run.ID)
		}
		return errors.Wrap(err, errors.ErrCodeRunPersistFailed, "failed to save analysis run")
	}
	r.log.Debug("Saved analysis run", logging.String("run_id", run.ID))
	return nil
}

func (r *postgresRunRepo) FindByID(ctx context.Context, id string) (*compound.AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs WHERE id = $1`
	run, err := scanRun(r.executor().QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf(errors.ErrCodeRunNotFound, "analysis run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get analysis run")
	}
	return run, nil
}

func (r *postgresRunRepo) List(ctx context.Context, limit, offset int) ([]*compound.AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.executor().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list analysis runs")
	}
	defer rows.Close()

	runs := make([]*compound.AnalysisRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan analysis run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate analysis runs")
	}
	return runs, nil
}

func (r *postgresRunRepo) SetExportKey(ctx context.Context, id, key string) error {
	res, err := r.executor().ExecContext(ctx, `UPDATE analysis_runs SET export_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update export key")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Newf(errors.ErrCodeRunNotFound, "analysis run %s not found", id)
	}
	return nil
}

func scanRun(s scanner) (*compound.AnalysisRun, error) {
	var (
		run        compound.AnalysisRun
		durationMS int64
	)
	err := s.Scan(
		&run.ID, &run.FileName, &run.SmilesColumn, &run.Detected,
		&run.Counts.Total, &run.Counts.Valid, &run.Counts.Invalid, &run.Counts.Pass, &run.Counts.Fail,
		&run.ExportKey, &durationMS, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.CreatedAt = run.CreatedAt.UTC()
	return &run, nil
}

//Personal.AI order the ending
