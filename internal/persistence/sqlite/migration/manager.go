package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
)

// Manager validates a migration set and applies pending versions in order.
type Manager struct {
	executor   *Executor
	migrations []Migration
	logger     *slog.Logger
}

// NewManager constructs a manager for the given database and migration set.
func NewManager(db *sql.DB, migrations []Migration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		executor:   NewExecutor(db),
		migrations: migrations,
		logger:     logger,
	}
}

// Up applies every pending migration in version order and returns the number
// applied.
func (m *Manager) Up(ctx context.Context) (int, error) {
	if err := validate(m.migrations); err != nil {
		return 0, err
	}

	if err := m.executor.EnsureVersionTable(ctx); err != nil {
		return 0, err
	}

	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	ordered := make([]Migration, len(m.migrations))
	copy(ordered, m.migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	count := 0
	for _, migration := range ordered {
		if applied[migration.Version] {
			continue
		}
		if err := m.executor.Apply(ctx, migration); err != nil {
			return count, err
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version,
			"name", migration.Name,
		)
		count++
	}

	return count, nil
}

func validate(migrations []Migration) error {
	seen := make(map[int]bool, len(migrations))
	for _, migration := range migrations {
		if migration.Version <= 0 {
			return fmt.Errorf("%w: version %d must be positive", ErrInvalidMigration, migration.Version)
		}
		if seen[migration.Version] {
			return fmt.Errorf("%w: duplicate version %d", ErrInvalidMigration, migration.Version)
		}
		if len(migration.Statements) == 0 {
			return fmt.Errorf("%w: version %d has no statements", ErrInvalidMigration, migration.Version)
		}
		seen[migration.Version] = true
	}
	return nil
}
