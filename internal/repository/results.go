package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yogeshhk/MiningResume/internal/parser"
)

// StoredResult is one persisted parse outcome.
type StoredResult struct {
	ID           uuid.UUID                 `json:"id"`
	DocumentName string                    `json:"document_name"`
	SourcePath   string                    `json:"source_path"`
	Success      bool                      `json:"success"`
	Record       []parser.AttributeOutcome `json:"record"`
	ErrorMessage *string                   `json:"error_message,omitempty"`
	ProcessingMS int64                     `json:"processing_ms"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// ResultRepository persists parser results.
type ResultRepository interface {
	Save(ctx context.Context, result *parser.ParserResult) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*StoredResult, error)
	List(ctx context.Context, limit int) ([]*StoredResult, error)
}

// SQLResultRepository implements ResultRepository over database/sql
// (SQLite or Postgres).
type SQLResultRepository struct {
	db       *sql.DB
	postgres bool
	logger   *slog.Logger
}

func NewSQLResultRepository(db *sql.DB, dsn string, logger *slog.Logger) *SQLResultRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLResultRepository{
		db:       db,
		postgres: strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"),
		logger:   logger,
	}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS parse_result (
	id TEXT PRIMARY KEY,
	document_name TEXT NOT NULL,
	source_path TEXT NOT NULL,
	success BOOLEAN NOT NULL,
	record TEXT NOT NULL,
	error_message TEXT,
	processing_ms BIGINT NOT NULL,
	provider_calls BIGINT NOT NULL,
	cache_hits BIGINT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// Migrate creates the result table when absent.
func (r *SQLResultRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create parse_result table: %w", err)
	}
	return nil
}

func (r *SQLResultRepository) Save(ctx context.Context, result *parser.ParserResult) (uuid.UUID, error) {
	id := uuid.New()
	record, err := json.Marshal(result.Attributes)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal record: %w", err)
	}

	query := rebind(r.postgres, `
INSERT INTO parse_result
	(id, document_name, source_path, success, record, error_message, processing_ms, provider_calls, cache_hits, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		id.String(),
		result.DocumentName,
		result.SourcePath,
		result.Success,
		string(record),
		result.ErrorMessage,
		int64(result.ProcessingSecs*1000),
		result.ProviderCalls,
		result.CacheHits,
		time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert parse_result: %w", err)
	}

	r.logger.Info("repository.result.saved",
		"id", id,
		"file", result.DocumentName,
		"success", result.Success,
	)
	return id, nil
}

func (r *SQLResultRepository) Get(ctx context.Context, id uuid.UUID) (*StoredResult, error) {
	query := rebind(r.postgres, `
SELECT id, document_name, source_path, success, record, error_message, processing_ms, created_at
FROM parse_result WHERE id = ?`)

	row := r.db.QueryRowContext(ctx, query, id.String())
	return scanResult(row)
}

func (r *SQLResultRepository) List(ctx context.Context, limit int) ([]*StoredResult, error) {
	if limit <= 0 {
		limit = 100
	}
	query := rebind(r.postgres, `
SELECT id, document_name, source_path, success, record, error_message, processing_ms, created_at
FROM parse_result ORDER BY created_at DESC LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list parse_result: %w", err)
	}
	defer rows.Close()

	var out []*StoredResult
	for rows.Next() {
		sr, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*StoredResult, error) {
	var (
		sr     StoredResult
		idStr  string
		record string
	)
	if err := row.Scan(
		&idStr,
		&sr.DocumentName,
		&sr.SourcePath,
		&sr.Success,
		&record,
		&sr.ErrorMessage,
		&sr.ProcessingMS,
		&sr.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan parse_result: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse result id: %w", err)
	}
	sr.ID = id

	if err := json.Unmarshal([]byte(record), &sr.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &sr, nil
}
