package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/wfimport/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS workflow_imports (
		id            UUID PRIMARY KEY,
		succeeded     BOOLEAN NOT NULL,
		workflow_id   TEXT NOT NULL DEFAULT '',
		workflow_name TEXT NOT NULL DEFAULT '',
		base_url      TEXT NOT NULL,
		source_file   TEXT NOT NULL DEFAULT '',
		scheme        TEXT NOT NULL DEFAULT '',
		endpoint      TEXT NOT NULL DEFAULT '',
		attempts      JSONB NOT NULL DEFAULT '[]',
		error         TEXT NOT NULL DEFAULT '',
		started_at    TIMESTAMPTZ NOT NULL,
		finished_at   TIMESTAMPTZ NOT NULL
	)
`

// ImportRepo — журнал импортов.
type ImportRepo struct {
	pool *pgxpool.Pool
}

// NewImportRepo создаёт новый ImportRepo.
func NewImportRepo(pool *pgxpool.Pool) *ImportRepo {
	return &ImportRepo{pool: pool}
}

// EnsureSchema создаёт таблицу журнала, если её нет.
func (r *ImportRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create workflow_imports: %w", err)
	}
	return nil
}

// Record сохраняет результат импорта.
func (r *ImportRepo) Record(ctx context.Context, res *domain.ImportResult) error {
	attemptsJSON, err := json.Marshal(res.Attempts)
	if err != nil {
		return fmt.Errorf("marshal attempts: %w", err)
	}

	query := `
		INSERT INTO workflow_imports (
			id, succeeded, workflow_id, workflow_name, base_url, source_file,
			scheme, endpoint, attempts, error, started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.pool.Exec(ctx, query,
		res.ImportID,
		res.Succeeded,
		res.WorkflowID,
		res.WorkflowName,
		res.BaseURL,
		res.SourceFile,
		string(res.Scheme),
		res.Endpoint,
		attemptsJSON,
		res.Error,
		res.StartedAt,
		res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow import: %w", err)
	}
	return nil
}

// GetByID возвращает запись журнала по ID импорта.
func (r *ImportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportResult, error) {
	query := `
		SELECT id, succeeded, workflow_id, workflow_name, base_url, source_file,
		       scheme, endpoint, attempts, error, started_at, finished_at
		FROM workflow_imports
		WHERE id = $1
	`
	res, err := scanImport(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow import: %w", err)
	}
	return res, nil
}

// List возвращает последние импорты, новые первыми.
func (r *ImportRepo) List(ctx context.Context, limit int) ([]domain.ImportResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, succeeded, workflow_id, workflow_name, base_url, source_file,
		       scheme, endpoint, attempts, error, started_at, finished_at
		FROM workflow_imports
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list workflow imports: %w", err)
	}
	defer rows.Close()

	var imports []domain.ImportResult
	for rows.Next() {
		res, err := scanImport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow import: %w", err)
		}
		imports = append(imports, *res)
	}
	return imports, rows.Err()
}

func scanImport(row pgx.Row) (*domain.ImportResult, error) {
	var res domain.ImportResult
	var scheme string
	var attemptsJSON []byte

	if err := row.Scan(
		&res.ImportID,
		&res.Succeeded,
		&res.WorkflowID,
		&res.WorkflowName,
		&res.BaseURL,
		&res.SourceFile,
		&scheme,
		&res.Endpoint,
		&attemptsJSON,
		&res.Error,
		&res.StartedAt,
		&res.FinishedAt,
	); err != nil {
		return nil, err
	}

	res.Scheme = domain.Scheme(scheme)
	if err := json.Unmarshal(attemptsJSON, &res.Attempts); err != nil {
		return nil, fmt.Errorf("unmarshal attempts: %w", err)
	}
	return &res, nil
}
