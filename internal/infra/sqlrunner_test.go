package infra

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordingDB struct {
	lastQuery string
	lastArgs  []any
	err       error
}

func (d *recordingDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	d.lastQuery = query
	d.lastArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), d.err
}

func (d *recordingDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	d.lastQuery = query
	return errorRow{err: pgx.ErrNoRows}
}

func (d *recordingDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	d.lastQuery = query
	return nil, d.err
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	db := &recordingDB{}
	runner := NewSQLRunner(db, *DiscardLogger())

	query := "--sql 0b7f1a52-4f0e-4b55-9a53-6f4f6f0f2f11\nselect 1;"
	if _, err := runner.Exec(context.Background(), query, 42); err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	if strings.Contains(db.lastQuery, "--sql") {
		t.Fatalf("marker forwarded to database: %q", db.lastQuery)
	}
	if strings.TrimSpace(db.lastQuery) != "select 1;" {
		t.Fatalf("query = %q", db.lastQuery)
	}
	if len(db.lastArgs) != 1 || db.lastArgs[0] != 42 {
		t.Fatalf("args = %#v", db.lastArgs)
	}
}

func TestSQLRunnerRejectsUnmarkedQueries(t *testing.T) {
	db := &recordingDB{}
	runner := NewSQLRunner(db, *DiscardLogger())

	if _, err := runner.Exec(context.Background(), "select 1;"); err == nil {
		t.Fatalf("expected error for unmarked query")
	}
	if db.lastQuery != "" {
		t.Fatalf("unmarked query reached the database")
	}
	if err := runner.QueryRow(context.Background(), "").Scan(); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestSQLRunnerPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	runner := NewSQLRunner(&recordingDB{err: boom}, *DiscardLogger())
	_, err := runner.Query(context.Background(), "--sql 0b7f1a52-4f0e-4b55-9a53-6f4f6f0f2f11\nselect 1;")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	row := runner.QueryRow(context.Background(), "--sql 0b7f1a52-4f0e-4b55-9a53-6f4f6f0f2f11\nselect 1;")
	if !IsNoRows(row.Scan()) {
		t.Fatalf("expected no rows")
	}
}
