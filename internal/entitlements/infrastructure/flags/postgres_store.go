package flags

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFlagStore keeps flags in the premium_flags table of a shared
// PostgreSQL database.
type PostgresFlagStore struct {
	pool *pgxpool.Pool
}

// NewPostgresFlagStore creates a PostgreSQL-backed flag store.
func NewPostgresFlagStore(pool *pgxpool.Pool) *PostgresFlagStore {
	return &PostgresFlagStore{pool: pool}
}

func (s *PostgresFlagStore) Load(ctx context.Context, scope string) (PremiumFlag, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM premium_flags WHERE scope = $1`, scope)
	if err != nil {
		return PremiumFlag{}, fmt.Errorf("query premium flags: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return PremiumFlag{}, fmt.Errorf("scan premium flag: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return PremiumFlag{}, err
	}
	return FlagFromValues(values), nil
}

func (s *PostgresFlagStore) Save(ctx context.Context, scope string, flag PremiumFlag) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM premium_flags WHERE scope = $1`, scope); err != nil {
			return fmt.Errorf("clear premium flags: %w", err)
		}

		batch := &pgx.Batch{}
		for key, value := range flag.Values() {
			batch.Queue(`
				INSERT INTO premium_flags (scope, key, value, updated_at)
				VALUES ($1, $2, $3, NOW())
				ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
			`, scope, key, value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *PostgresFlagStore) Clear(ctx context.Context, scope string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM premium_flags WHERE scope = $1`, scope); err != nil {
		return fmt.Errorf("clear premium flags: %w", err)
	}
	return nil
}

// Ping verifies the pool can reach the server.
func (s *PostgresFlagStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
