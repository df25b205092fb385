package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migrateTo makes the live schema match schema declaratively, without versioned migration files.
//
// The target schema is created in an attached in-memory database and diffed against sqlite_schema. Tables are
// created, dropped, or rebuilt with the generic ALTER TABLE procedure from
// https://www.sqlite.org/lang_altertable.html#otheralter, after which triggers and indexes are synchronised.
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/.
func (db *Database) migrateTo(ctx context.Context, schema string) (err error) {
	start := time.Now()

	detach, err := db.attachTarget(ctx, schema)
	if err != nil {
		return fmt.Errorf("attach target schema: %w", err)
	}
	defer detach()

	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, fmt.Errorf("enable foreign keys: %w", fkErr))
		}
	}()

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer db.rollback(ctx, tx)

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	for _, typ := range []schemaType{schemaTypeTrigger, schemaTypeIndex} {
		if err = db.syncSchemaObjects(ctx, tx, typ); err != nil {
			return fmt.Errorf("sync %ss: %w", typ, err)
		}
	}
	if err = checkForeignKeys(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachTarget creates schema in a fresh in-memory database attached as schemaTarget.
func (db *Database) attachTarget(ctx context.Context, schema string) (func(), error) {
	name := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", name)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	// The shared-cache database lives as long as a connection to it is open, which ATTACH provides.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target", slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", name); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target", slog.Any("error", detachErr))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
	}
}

type schemaType string

const (
	schemaTypeTable   schemaType = "table"
	schemaTypeTrigger schemaType = "trigger"
	schemaTypeIndex   schemaType = "index"
)

// schemaObject is one entry of the schema diff. liveSQL is empty for objects only in the target and targetSQL is
// empty for objects that were removed from it.
type schemaObject struct {
	name      string
	liveSQL   string
	targetSQL string
}

// diffSchema lists objects of typ whose definition differs between the live and target schemas.
// Internal sqlite_ objects, automatic indexes, and Litestream bookkeeping tables are ignored.
func diffSchema(ctx context.Context, tx *sql.Tx, typ schemaType) (_ []schemaObject, err error) {
	rows, err := tx.QueryContext(ctx, `
WITH live AS (SELECT name, sql
              FROM main.sqlite_schema
              WHERE type = :type AND sql IS NOT NULL
                AND name NOT LIKE 'sqlite_%' AND name NOT LIKE '_litestream_%'),
     target AS (SELECT name, sql
                FROM schemaTarget.sqlite_schema
                WHERE type = :type AND sql IS NOT NULL
                  AND name NOT LIKE 'sqlite_%' AND name NOT LIKE '_litestream_%')
SELECT COALESCE(live.name, target.name), COALESCE(live.sql, ''), COALESCE(target.sql, '')
FROM live
         FULL OUTER JOIN target ON live.name = target.name
-- Renaming a table quotes its name in sqlite_schema, so quotes are ignored in the comparison.
WHERE REPLACE(live.sql, '"', '') IS NOT REPLACE(target.sql, '"', '')
ORDER BY 1`, sql.Named("type", string(typ)))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()
	var objects []schemaObject
	for rows.Next() {
		var o schemaObject
		if err = rows.Scan(&o.name, &o.liveSQL, &o.targetSQL); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		objects = append(objects, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return objects, nil
}

func (db *Database) exec(ctx context.Context, tx *sql.Tx, msg string, query string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	tables, err := diffSchema(ctx, tx, schemaTypeTable)
	if err != nil {
		return fmt.Errorf("diff tables: %w", err)
	}
	for _, t := range tables {
		switch {
		case t.targetSQL == "":
			err = db.exec(ctx, tx, "dropping table", "DROP TABLE "+t.name)
		case t.liveSQL == "":
			err = db.exec(ctx, tx, "creating table", t.targetSQL)
		default:
			err = db.rebuildTable(ctx, tx, t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// rebuildTable recreates a changed table under a temporary name, copies the columns both definitions share, and
// swaps it in place of the old table.
func (db *Database) rebuildTable(ctx context.Context, tx *sql.Tx, t schemaObject) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", t.name), slog.String("live_sql", t.liveSQL), slog.String("new_sql", t.targetSQL))

	tempName := t.name + "_migration_temp"
	if err := db.exec(ctx, tx, "creating temporary table",
		strings.Replace(t.targetSQL, t.name, tempName, 1)); err != nil {
		return err
	}

	columns, err := commonColumns(ctx, tx, t.name)
	if err != nil {
		return fmt.Errorf("common columns of %s: %w", t.name, err)
	}
	if len(columns) > 0 {
		list := strings.Join(columns, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, list, list, t.name)
		if err = db.exec(ctx, tx, "copying data", copySQL); err != nil {
			return err
		}
	}
	if err = db.exec(ctx, tx, "dropping old table", "DROP TABLE "+t.name); err != nil {
		return err
	}
	return db.exec(ctx, tx, "renaming table", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, t.name))
}

// commonColumns returns the double-quoted names of columns present in both the live and target table.
func commonColumns(ctx context.Context, tx *sql.Tx, table string) (_ []string, err error) {
	rows, err := tx.QueryContext(ctx, `
SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS live
         JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = live.name`,
		sql.Named("table_name", table))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()
	var columns []string
	for rows.Next() {
		var column string
		if err = rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		columns = append(columns, column)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return columns, nil
}

// syncSchemaObjects drops, creates, or replaces triggers or indexes to match the target.
func (db *Database) syncSchemaObjects(ctx context.Context, tx *sql.Tx, typ schemaType) error {
	objects, err := diffSchema(ctx, tx, typ)
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}
	drop := "DROP " + strings.ToUpper(string(typ)) + " "
	for _, o := range objects {
		if o.liveSQL != "" {
			if err = db.exec(ctx, tx, "dropping "+string(typ), drop+o.name); err != nil {
				return err
			}
		}
		if o.targetSQL != "" {
			if err = db.exec(ctx, tx, "creating "+string(typ), o.targetSQL); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkForeignKeys fails when the migrated data violates a foreign key constraint.
func checkForeignKeys(ctx context.Context, tx *sql.Tx) (err error) {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()
	var violations []string
	for rows.Next() {
		var (
			table, parent string
			rowID         sql.NullInt64
			fkID          int
		)
		if err = rows.Scan(&table, &rowID, &parent, &fkID); err != nil {
			return fmt.Errorf("scan foreign key violation: %w", err)
		}
		violations = append(violations, fmt.Sprintf("%s row %d references missing %s", table, rowID.Int64, parent))
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	if len(violations) > 0 {
		return fmt.Errorf("foreign key violations: %s", strings.Join(violations, "; "))
	}
	return nil
}
