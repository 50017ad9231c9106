// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/google/uuid"

	"github.com/tomtom215/gaquery/internal/logging"
	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/query"
	"github.com/tomtom215/gaquery/internal/report"
)

// identifierPattern restricts table names to plain SQL identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DuckDB persists report tables in a DuckDB database file.
type DuckDB struct {
	conn *sql.DB
	path string
}

// WriteMode controls what happens to an existing table.
type WriteMode int

const (
	// ModeAppend inserts into an existing table, creating it if needed.
	ModeAppend WriteMode = iota
	// ModeReplace drops and recreates the table.
	ModeReplace
)

// Run is one archived execution.
type Run struct {
	ID          uuid.UUID
	Table       string
	Query       string
	Rows        int
	Pages       int
	Complete    bool
	SampleSize  *int64
	SampleSpace *int64
	CreatedAt   time.Time
}

// OpenDuckDB opens (or creates) the database at path. An empty path opens
// an in-memory database.
func OpenDuckDB(path string) (*DuckDB, error) {
	connStr := path
	if path != "" {
		// Extensions are never needed here; keep DuckDB from reaching the network.
		connStr = path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database %q: %w", path, err)
	}

	// DuckDB in-memory databases are per connection.
	conn.SetMaxOpenConns(1)

	return &DuckDB{conn: conn, path: path}, nil
}

// Close closes the database.
func (d *DuckDB) Close() error {
	return d.conn.Close()
}

// WriteTable stores t in table and returns the number of inserted rows.
// All statements run in one transaction.
func (d *DuckDB) WriteTable(ctx context.Context, table string, t *report.Table, mode WriteMode) (inserted int, err error) {
	if !identifierPattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	if t == nil || len(t.Columns) == 0 {
		return 0, errors.New("table has no columns")
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	if mode == ModeReplace {
		if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	if _, err = tx.ExecContext(ctx, createTableSQL(table, t.Columns)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, t.Columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Failed to close prepared statement")
		}
	}()

	for i, row := range t.Rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	inserted = len(t.Rows)
	metrics.RecordExport("duckdb", inserted)
	logging.Debug().Str("table", table).Int("rows", inserted).Msg("Stored report in DuckDB")
	return inserted, nil
}

// RecordRun archives the normalized query and outcome of an execution in
// <table>_runs.
func (d *DuckDB) RecordRun(ctx context.Context, table string, q query.Normalized, meta report.Metadata, rows int) (Run, error) {
	if !identifierPattern.MatchString(table) {
		return Run{}, fmt.Errorf("invalid table name %q", table)
	}

	run := Run{
		ID:        uuid.New(),
		Table:     table,
		Query:     q.Encode(),
		Rows:      rows,
		Pages:     meta.Pages,
		Complete:  meta.Complete,
		CreatedAt: time.Now().UTC(),
	}
	if meta.Sampling != nil {
		size, space := meta.Sampling.SampleSize, meta.Sampling.SampleSpace
		run.SampleSize, run.SampleSpace = &size, &space
	}

	runs := quoteIdent(table + "_runs")
	create := `CREATE TABLE IF NOT EXISTS ` + runs + ` (
		id UUID PRIMARY KEY,
		table_name VARCHAR NOT NULL,
		query VARCHAR NOT NULL,
		row_count BIGINT NOT NULL,
		pages INTEGER NOT NULL,
		complete BOOLEAN NOT NULL,
		sample_size BIGINT,
		sample_space BIGINT,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := d.conn.ExecContext(ctx, create); err != nil {
		return Run{}, fmt.Errorf("failed to create runs table: %w", err)
	}

	insert := `INSERT INTO ` + runs + ` (id, table_name, query, row_count, pages, complete, sample_size, sample_space, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := d.conn.ExecContext(ctx, insert,
		run.ID.String(), run.Table, run.Query, run.Rows, run.Pages, run.Complete,
		nullInt(run.SampleSize), nullInt(run.SampleSpace), run.CreatedAt,
	); err != nil {
		return Run{}, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// columnSQLType maps a column kind to a DuckDB type.
func columnSQLType(k report.Kind) string {
	switch k {
	case report.KindInteger:
		return "BIGINT"
	case report.KindFloat:
		return "DOUBLE"
	case report.KindBool:
		return "BOOLEAN"
	case report.KindTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

func createTableSQL(table string, cols []report.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.Name) + " " + columnSQLType(c.Kind)
	}
	return "CREATE TABLE IF NOT EXISTS " + quoteIdent(table) + " (" + strings.Join(defs, ", ") + ")"
}

func insertSQL(table string, cols []report.Column) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	return "INSERT INTO " + quoteIdent(table) + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

// quoteIdent quotes an SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
