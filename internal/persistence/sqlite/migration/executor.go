package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const versionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)
`

// Executor applies individual migrations and tracks applied versions.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates an executor bound to the given database handle.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// EnsureVersionTable creates the schema_migrations bookkeeping table.
func (e *Executor) EnsureVersionTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, versionTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// AppliedVersions returns the set of versions already recorded.
func (e *Executor) AppliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read applied versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}
	return applied, nil
}

// Apply runs every statement of the migration and records its version, all
// within one transaction.
func (e *Executor) Apply(ctx context.Context, m Migration) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}

	for _, statement := range m.Statements {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			_ = tx.Rollback()
			return &ApplyError{Version: m.Version, Name: m.Name, Err: err}
		}
	}

	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Name, appliedAt,
	); err != nil {
		_ = tx.Rollback()
		return &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}
	return nil
}
