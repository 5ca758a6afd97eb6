package store

import (
	"context"
	"database/sql"
	"log"

	"pdfcombine/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobStorer interface {
	SaveJob(context.Context, types.Job) error
	GetJobByID(context.Context, uuid.UUID) (*types.Job, error)
	ListJobs(context.Context, int) ([]types.Job, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) SaveJob(ctx context.Context, job types.Job) error {
	query := `INSERT INTO jobs (id, status, source_dir, output_path, pages, files_total, files_failed, warnings, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			output_path = EXCLUDED.output_path,
			pages = EXCLUDED.pages,
			files_total = EXCLUDED.files_total,
			files_failed = EXCLUDED.files_failed,
			warnings = EXCLUDED.warnings,
			finished_at = EXCLUDED.finished_at
			`
	_, err := p.pool.Exec(
		ctx,
		query,
		job.ID,
		job.Status,
		job.SourceDir,
		job.OutputPath,
		job.Pages,
		job.FilesTotal,
		job.FilesFailed,
		job.Warnings,
		job.CreatedAt,
		job.FinishedAt,
	)

	return err
}

func (p *PostgresStore) GetJobByID(ctx context.Context, jobID uuid.UUID) (*types.Job, error) {
	rows, err := p.pool.Query(ctx, "select id, status, source_dir, output_path, pages, files_total, files_failed, warnings, created_at, finished_at from jobs where id = $1", jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	job := &types.Job{}
	if err := rows.Scan(
		&job.ID,
		&job.Status,
		&job.SourceDir,
		&job.OutputPath,
		&job.Pages,
		&job.FilesTotal,
		&job.FilesFailed,
		&job.Warnings,
		&job.CreatedAt,
		&job.FinishedAt); err != nil {
		return nil, err
	}
	return job, nil
}

func (p *PostgresStore) ListJobs(ctx context.Context, limit int) ([]types.Job, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := p.pool.Query(ctx,
		"select id, status, source_dir, output_path, pages, files_total, files_failed, warnings, created_at, finished_at from jobs order by created_at desc limit $1",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		var job types.Job
		if err := rows.Scan(
			&job.ID,
			&job.Status,
			&job.SourceDir,
			&job.OutputPath,
			&job.Pages,
			&job.FilesTotal,
			&job.FilesFailed,
			&job.Warnings,
			&job.CreatedAt,
			&job.FinishedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (p *PostgresStore) createJobTables(ctx context.Context) error {

	query := `
	CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		status TEXT NOT NULL,
		source_dir TEXT,
		output_path TEXT,
		pages INTEGER DEFAULT 0,
		files_total INTEGER DEFAULT 0,
		files_failed INTEGER DEFAULT 0,
		warnings TEXT[],
		created_at TIMESTAMP WITH TIME ZONE,
		finished_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createJobTables(ctx)
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
