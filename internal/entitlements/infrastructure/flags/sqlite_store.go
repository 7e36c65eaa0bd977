package flags

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteFlagStore keeps flags in the premium_flags table.
type SQLiteFlagStore struct {
	db *sql.DB
}

// NewSQLiteFlagStore creates a SQLite-backed flag store. The schema must
// already be migrated.
func NewSQLiteFlagStore(db *sql.DB) *SQLiteFlagStore {
	return &SQLiteFlagStore{db: db}
}

func (s *SQLiteFlagStore) Load(ctx context.Context, scope string) (PremiumFlag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM premium_flags WHERE scope = ?`, scope)
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

// Save replaces every key of scope in one transaction so readers never see
// a half-written flag.
func (s *SQLiteFlagStore) Save(ctx context.Context, scope string, flag PremiumFlag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM premium_flags WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("clear premium flags: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range flag.Values() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO premium_flags (scope, key, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, scope, key, value, now); err != nil {
			return fmt.Errorf("upsert premium flag %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteFlagStore) Clear(ctx context.Context, scope string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM premium_flags WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("clear premium flags: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLiteFlagStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
