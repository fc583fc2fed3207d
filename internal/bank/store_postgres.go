package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnexam/examgen/internal/question"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a pgx-backed Store. Each question is one row with
// its full record as JSONB plus the columns needed to keep insertion
// order and id uniqueness; Save upserts the whole collection inside a
// transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store and ensures the
// questions table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS questions (
			id       TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			record   JSONB NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure questions table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) LoadAll(ctx context.Context) ([]question.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT record FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var qs []question.Question
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q question.Question
		if err := json.Unmarshal(record, &q); err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, qs []question.Question) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	// Full rewrite mirrors the file store's durability contract: the
	// stored collection always equals the in-memory bank.
	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	for i, q := range qs {
		record, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("encode question %s: %w", q.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions (id, position, record) VALUES ($1, $2, $3)`,
			q.ID, i, record,
		); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
