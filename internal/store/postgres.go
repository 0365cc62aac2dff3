package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pool is the subset of *pgxpool.Pool the store needs, so tests can run
// against pgxmock.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type PostgresStore struct {
	pool pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: p}
	if err := s.EnsureSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithPool wraps an existing pool. The schema is not touched.
func NewPostgresStoreWithPool(p pool) *PostgresStore {
	return &PostgresStore{pool: p}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schema = `CREATE TABLE IF NOT EXISTS baseurl_evaluations (
	id            UUID PRIMARY KEY,
	candidate_url TEXT NOT NULL,
	score         DOUBLE PRECISION NOT NULL,
	features      JSONB NOT NULL,
	weights       JSONB NOT NULL,
	source        TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the evaluations table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const evaluationColumns = `id, candidate_url, score, features, weights, source, created_at`

func (s *PostgresStore) SaveEvaluation(ctx context.Context, e *Evaluation) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	featuresJSON, err := json.Marshal(e.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	weightsJSON, err := json.Marshal(e.Weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO baseurl_evaluations (id, candidate_url, score, features, weights, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		e.ID, e.CandidateURL, e.Score, featuresJSON, weightsJSON, e.Source,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEvaluation(ctx context.Context, id uuid.UUID) (*Evaluation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+evaluationColumns+` FROM baseurl_evaluations WHERE id = $1`, id)
	e, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, limit int) ([]*Evaluation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+evaluationColumns+` FROM baseurl_evaluations ORDER BY created_at DESC LIMIT $1`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvaluation(row pgx.Row) (*Evaluation, error) {
	e := &Evaluation{}
	var featuresJSON, weightsJSON []byte
	if err := row.Scan(&e.ID, &e.CandidateURL, &e.Score, &featuresJSON, &weightsJSON, &e.Source, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(featuresJSON, &e.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if err := json.Unmarshal(weightsJSON, &e.Weights); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	return e, nil
}
