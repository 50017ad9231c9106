// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/gaquery/internal/report"
)

func openTestDB(t *testing.T) *DuckDB {
	t.Helper()
	db, err := OpenDuckDB("")
	if err != nil {
		t.Fatalf("OpenDuckDB() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDuckDB_WriteTable(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.WriteTable(ctx, "sessions_by_day", sampleTable(), ModeReplace)
	if err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	var (
		count    int
		total    int64
		nullRate int
		first    time.Time
	)
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*), CAST(SUM(sessions) AS BIGINT), COUNT(*) - COUNT("bounceRate"), MIN("date") FROM sessions_by_day`).
		Scan(&count, &total, &nullRate, &first); err != nil {
		t.Fatalf("query stored table: %v", err)
	}
	if count != 2 || total != 13 || nullRate != 1 {
		t.Errorf("count=%d total=%d nulls=%d, want 2 13 1", count, total, nullRate)
	}
	if !first.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MIN(date) = %v, want 2024-03-01", first)
	}

	var dataType string
	if err := db.conn.QueryRowContext(ctx,
		`SELECT data_type FROM information_schema.columns WHERE table_name = 'sessions_by_day' AND column_name = 'sessions'`).
		Scan(&dataType); err != nil {
		t.Fatalf("query column type: %v", err)
	}
	if dataType != "BIGINT" {
		t.Errorf("sessions type = %q, want BIGINT", dataType)
	}
}

func TestDuckDB_AppendAndReplace(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := db.WriteTable(ctx, "report", sampleTable(), ModeAppend); err != nil {
			t.Fatalf("append #%d: %v", i, err)
		}
	}
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM report").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("rows after two appends = %d, want 4", count)
	}

	if _, err := db.WriteTable(ctx, "report", sampleTable(), ModeReplace); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM report").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("rows after replace = %d, want 2", count)
	}
}

func TestDuckDB_WriteTableErrors(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.WriteTable(ctx, "bad name; DROP", sampleTable(), ModeAppend); err == nil {
		t.Error("invalid table name should fail")
	}
	if _, err := db.WriteTable(ctx, "empty", &report.Table{}, ModeAppend); err == nil {
		t.Error("table without columns should fail")
	}

	// A row that does not fit the declared type rolls back the whole write.
	bad := sampleTable()
	bad.Rows = append(bad.Rows, []any{"not a time", "x", int64(1), 0.5})
	if _, err := db.WriteTable(ctx, "rolled_back", bad, ModeReplace); err == nil {
		t.Fatal("expected insert error")
	}
	var exists int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'rolled_back'`).Scan(&exists); err != nil {
		t.Fatal(err)
	}
	if exists != 0 {
		t.Error("failed write should leave no table behind")
	}
}

func TestDuckDB_RecordRun(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	meta := report.Metadata{
		Pages:    3,
		Complete: true,
		Sampling: &report.Sampling{SampleSize: 500, SampleSpace: 1000},
	}
	run, err := db.RecordRun(ctx, "report", sampleQuery(t), meta, 42)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if !strings.Contains(run.Query, "metrics=ga%3Asessions") {
		t.Errorf("Run.Query = %q, want the encoded query", run.Query)
	}

	if _, err := db.RecordRun(ctx, "report", sampleQuery(t), report.Metadata{Pages: 1}, 1); err != nil {
		t.Fatalf("RecordRun() unsampled error = %v", err)
	}

	var rows, sampled int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(sample_size) FROM report_runs").Scan(&rows, &sampled); err != nil {
		t.Fatal(err)
	}
	if rows != 2 || sampled != 1 {
		t.Errorf("runs=%d sampled=%d, want 2 and 1", rows, sampled)
	}
}

func TestDuckDB_FileDatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports.duckdb")
	db, err := OpenDuckDB(path)
	if err != nil {
		t.Fatalf("OpenDuckDB(%s) error = %v", path, err)
	}
	if _, err := db.WriteTable(context.Background(), "report", sampleTable(), ModeAppend); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenDuckDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var count int
	if err := reopened.conn.QueryRow("SELECT COUNT(*) FROM report").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("persisted rows = %d, want 2", count)
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got := createTableSQL("r", sampleTable().Columns)
	want := `CREATE TABLE IF NOT EXISTS "r" ("date" TIMESTAMP, "country" VARCHAR, "sessions" BIGINT, "bounceRate" DOUBLE)`
	if got != want {
		t.Errorf("createTableSQL() =\n%s\nwant\n%s", got, want)
	}
	if q := quoteIdent(`we"ird`); q != `"we""ird"` {
		t.Errorf("quoteIdent() = %s", q)
	}
}
