package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists state documents in a single key/value table with a
// JSONB column. Deployments that already run Postgres use it instead of
// Redis; the document format is identical.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS user_states (
          user_key   TEXT PRIMARY KEY,
          state      JSONB NOT NULL,
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
        SELECT state FROM user_states WHERE user_key = $1
    `, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO user_states (user_key, state, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_key) DO UPDATE SET state = EXCLUDED.state, updated_at = now()
    `, key, data)
	return err
}
