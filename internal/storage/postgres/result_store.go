// Package postgres provides a Postgres-backed ResultStore.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anshultibby/moleAI-sub001/internal/product"
	"github.com/anshultibby/moleAI-sub001/internal/storage"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool behind the result store.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// ResultStore writes crawl runs into Postgres, with the run result stored as
// a jsonb column.
type ResultStore struct {
	pool  pgxIface
	table string
}

// NewResultStore creates a Postgres-backed ResultStore from config.
func NewResultStore(ctx context.Context, cfg Config) (*ResultStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewResultStoreWithPool(pool, cfg.Table)
}

// NewResultStoreWithPool constructs a store from an existing pool (primarily
// for testing with pgxmock).
func NewResultStoreWithPool(pool pgxIface, table string) (*ResultStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "crawl_results"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ResultStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool.
func (s *ResultStore) Close() {
	s.pool.Close()
}

// CreateRun inserts a new run row.
func (s *ResultStore) CreateRun(ctx context.Context, run storage.CrawlRun) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, seed_url, status, submitted_at) VALUES ($1, $2, $3, $4)`,
		s.table,
	)
	if _, err := s.pool.Exec(ctx, query, run.ID, run.SeedURL, string(run.Status), run.Submitted); err != nil {
		return fmt.Errorf("insert crawl run: %w", err)
	}
	return nil
}

// UpdateRun transitions a run's status and attaches its serialized result.
func (s *ResultStore) UpdateRun(
	ctx context.Context,
	id string,
	status storage.RunStatus,
	errText string,
	result *product.CrawlResult,
) error {
	var payload []byte
	if result != nil {
		var err error
		payload, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal crawl result: %w", err)
		}
	}
	query := fmt.Sprintf(
		`UPDATE %s SET status = $2, error_text = $3, result = $4, finished_at = $5 WHERE id = $1`,
		s.table,
	)
	var finished *time.Time
	if status == storage.RunStatusSucceeded || status == storage.RunStatusFailed {
		now := time.Now().UTC()
		finished = &now
	}
	tag, err := s.pool.Exec(ctx, query, id, string(status), errText, payload, finished)
	if err != nil {
		return fmt.Errorf("update crawl run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrRunNotFound
	}
	return nil
}

// GetRun fetches a run row by ID.
func (s *ResultStore) GetRun(ctx context.Context, id string) (storage.CrawlRun, error) {
	query := fmt.Sprintf(
		`SELECT id, seed_url, status, submitted_at, finished_at, COALESCE(error_text, ''), result FROM %s WHERE id = $1`,
		s.table,
	)
	var (
		run     storage.CrawlRun
		status  string
		payload []byte
	)
	row := s.pool.QueryRow(ctx, query, id)
	if err := row.Scan(&run.ID, &run.SeedURL, &status, &run.Submitted, &run.Finished, &run.ErrorText, &payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.CrawlRun{}, storage.ErrRunNotFound
		}
		return storage.CrawlRun{}, fmt.Errorf("select crawl run: %w", err)
	}
	run.Status = storage.RunStatus(status)
	if len(payload) > 0 {
		var result product.CrawlResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return storage.CrawlRun{}, fmt.Errorf("unmarshal crawl result: %w", err)
		}
		run.Result = &result
	}
	return run, nil
}

// EnsureSchema creates the results table when it does not exist.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		seed_url TEXT NOT NULL,
		status TEXT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		error_text TEXT,
		result JSONB
	)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
