package workout

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/petrarun/internal/ptr"
	"github.com/myrjola/petrarun/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// repository groups the SQLite repositories used by Service.
type repository struct {
	plans       *sqlitePlanRepository
	completions *sqliteCompletionRepository
}

type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		plans:       newSQLitePlanRepository(f.db, f.logger),
		completions: newSQLiteCompletionRepository(f.db, f.logger),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{Int64: 0, Valid: false}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return ptr.Ref(int(n.Int64))
}
