package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRun_createsClimateTables(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	if err := Run(ctx, conn, "sqlite3"); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	for _, table := range []string{"measurement", "station"} {
		var n int
		err := conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		if err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing after Run()", table)
		}
	}
}

func TestRun_isIdempotent(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	fake := clockwork.NewFakeClockAt(time.Date(2017, time.August, 23, 12, 0, 0, 0, time.UTC))
	m := New(conn, "sqlite3").WithClock(fake)

	if err := m.Run(ctx); err != nil {
		t.Fatalf("first Run() = %v", err)
	}
	if err := m.Run(ctx); err != nil {
		t.Fatalf("second Run() = %v", err)
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending() = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Pending() = %d migrations; want 0", len(pending))
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	all, err := m.embedded()
	if err != nil {
		t.Fatalf("embedded() = %v", err)
	}
	if count != len(all) {
		t.Errorf("schema_migrations rows = %d; want %d", count, len(all))
	}

	var appliedAt string
	if err := conn.QueryRow(`SELECT applied_at FROM schema_migrations WHERE version = '0001'`).Scan(&appliedAt); err != nil {
		t.Fatalf("read applied_at: %v", err)
	}
	if appliedAt != "2017-08-23T12:00:00Z" {
		t.Errorf("applied_at = %q; want 2017-08-23T12:00:00Z", appliedAt)
	}
}

func TestRun_ordersByVersionAndRollsBackFailures(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	m := New(conn, "sqlite3")
	m.files = fstest.MapFS{
		"sql/0002_bad.sql":    {Data: []byte("CREATE TABLE b (id INTEGER); INSERT INTO missing VALUES (1);")},
		"sql/0001_good.sql":   {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"sql/README.md":       {Data: []byte("ignored")},
		"sql/9_too_short.sql": {Data: []byte("ignored")},
	}

	if err := m.Run(ctx); err == nil {
		t.Fatal("Run() = nil; want error from 0002_bad")
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending() = %v", err)
	}
	if len(pending) != 1 || pending[0].Version != "0002" {
		t.Fatalf("Pending() = %+v; want only 0002", pending)
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'b'`).Scan(&n); err != nil {
		t.Fatalf("lookup b: %v", err)
	}
	if n != 0 {
		t.Error("table b should have been rolled back")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{in: "0001_climate_schema.sql", wantVersion: "0001", wantName: "climate_schema", wantOK: true},
		{in: "001_short.sql", wantOK: false},
		{in: "0001_schema.txt", wantOK: false},
	}
	for _, tt := range tests {
		v, n, ok := parseMigrationFilename(tt.in)
		if ok != tt.wantOK || v != tt.wantVersion || n != tt.wantName {
			t.Errorf("parseMigrationFilename(%q) = %q, %q, %v", tt.in, v, n, ok)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (id INTEGER);\n\n  ;CREATE INDEX i ON a(id);\n")
	if len(got) != 2 || got[0] != "CREATE TABLE a (id INTEGER)" || got[1] != "CREATE INDEX i ON a(id)" {
		t.Errorf("splitStatements() = %q", got)
	}
}
