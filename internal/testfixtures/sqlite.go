package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/course-planner/internal/persistence/sqlite"
)

// NewStorage opens a migrated SQLite storage backed by a temporary file and
// registers cleanup with the provided testing.TB.
func NewStorage(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "courseplan.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := storage.Migrate(context.Background(), logger); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	tb.Cleanup(func() { _ = storage.Close() })
	return storage
}
