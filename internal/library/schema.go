package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

var schemaTables = []string{"book", "user", "loan", "schema_version"}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// initSchema applies schema.sql and stamps or checks the version in one
// transaction. Every statement is CREATE ... IF NOT EXISTS, so a mismatch
// rolls back without touching an existing database.
func (s *Store) initSchema(ctx context.Context) error {
	return s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		version, err := readSchemaVersion(ctx, tx)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
			return nil
		}
		if err != nil {
			return err
		}
		if version != schemaVersion {
			return fmt.Errorf("%w: %s has version %d, this build expects %d",
				ErrSchemaMismatch, s.path, version, schemaVersion)
		}
		return nil
	})
}

func readSchemaVersion(ctx context.Context, q querier) (int, error) {
	var version int
	err := q.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
