// Package sqlite opens the application database and keeps its schema in sync with schema.sql.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	_ "embed"
)

//go:embed schema.sql
var schemaDefinition string

//go:embed fixtures.sql
var fixtures string

// Database holds separate pools for writes and reads. SQLite allows a single writer, so ReadWrite has exactly one
// connection while ReadOnly serves concurrent readers.
type Database struct {
	ReadWrite *sql.DB
	ReadOnly  *sql.DB
	logger    *slog.Logger

	stopOptimizer context.CancelFunc
	optimizerDone chan struct{}
}

// NewDatabase connects to url, migrates the schema, and applies the plan fixtures.
//
// The url is a file path or ":memory:". Every in-memory database gets a unique name so that parallel tests do
// not share data.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(ctx, url, logger)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), db.Close())
	}
	if _, err = db.ReadWrite.ExecContext(ctx, fixtures); err != nil {
		return nil, errors.Join(fmt.Errorf("apply fixtures: %w", err), db.Close())
	}
	optimizerCtx, cancel := context.WithCancel(ctx)
	db.stopOptimizer = cancel
	db.optimizerDone = make(chan struct{})
	go func() {
		defer close(db.optimizerDone)
		db.startDatabaseOptimizer(optimizerCtx)
	}()
	return db, nil
}

//nolint:gochecknoglobals // the driver may only be registered once per process.
var registerDriver sync.Once

const optimizedDriver = "sqlite3optimized"

func registerOptimizedDriver() {
	sql.Register(optimizedDriver, &sqlite3.SQLiteDriver{
		Extensions: nil,
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// Temp tables in memory, memory-mapped pages, and checkpoints left to the backup sidecar.
			if _, err := conn.Exec(
				"PRAGMA temp_store = memory;"+
					"PRAGMA mmap_size = 30000000000;"+
					"PRAGMA wal_autocheckpoint = 0;", nil); err != nil {
				return fmt.Errorf("exec optimization pragmas: %w", err)
			}
			return nil
		},
	})
}

// dsn builds the data source name. Parameters with a leading underscore are documented at
// https://pkg.go.dev/github.com/mattn/go-sqlite3#SQLiteDriver.Open, the rest at https://www.sqlite.org/uri.html.
func dsn(file string, inMemory bool, readOnly bool) string {
	params := []string{
		"_loc=auto",
		"_defer_foreign_keys=1",
		"_journal_mode=wal",
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
	}
	if readOnly {
		params = append(params, "mode=ro", "_txlock=deferred", "_query_only=true")
	} else {
		params = append(params, "mode=rwc", "_txlock=immediate")
	}
	if inMemory {
		// Shared cache lets both pools see the same in-memory database.
		params = append(params, "mode=memory", "cache=shared")
	}
	return fmt.Sprintf("file:%s?%s", file, strings.Join(params, "&"))
}

func openPool(ctx context.Context, dataSourceName string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open(optimizedDriver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	pool.SetMaxOpenConns(maxConns)
	pool.SetMaxIdleConns(maxConns)
	pool.SetConnMaxLifetime(time.Hour)
	pool.SetConnMaxIdleTime(time.Hour)
	// sql.DB is lazy, so ping to surface configuration errors here.
	if err = pool.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping: %w", err), pool.Close())
	}
	return pool, nil
}

const maxReadConns = 10

func connect(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	inMemory := strings.Contains(url, ":memory:")
	if inMemory {
		url = rand.Text()
	}
	registerDriver.Do(registerOptimizedDriver)

	readWriteDSN := dsn(url, inMemory, false)
	readWrite, err := openPool(ctx, readWriteDSN, 1)
	if err != nil {
		return nil, fmt.Errorf("open read-write database: %w", err)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "opened database", slog.String("sqlDsn", readWriteDSN))

	readOnly, err := openPool(ctx, dsn(url, inMemory, true), maxReadConns)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open read-only database: %w", err), readWrite.Close())
	}

	return &Database{
		ReadWrite:     readWrite,
		ReadOnly:      readOnly,
		logger:        logger,
		stopOptimizer: nil,
		optimizerDone: nil,
	}, nil
}

// Close stops the optimizer and closes both pools.
func (db *Database) Close() error {
	if db.stopOptimizer != nil {
		db.stopOptimizer()
		<-db.optimizerDone
	}
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}
