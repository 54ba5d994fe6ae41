package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"surfsup-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "hawaii.sqlite")
	if err := os.WriteFile(existing, nil, 0o600); err != nil {
		t.Fatalf("create dataset file: %v", err)
	}

	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{
			name: "explicit DSN wins",
			cfg:  config.Config{Driver: "sqlite3", DSN: "file::memory:?cache=shared", Path: existing},
			want: "file::memory:?cache=shared",
		},
		{
			name: "existing file path",
			cfg:  config.Config{Driver: "sqlite3", Path: existing},
			want: "file:" + existing + "?_busy_timeout=5000",
		},
		{
			name: "file: prefix with params",
			cfg:  config.Config{Driver: "sqlite3", Path: "file:/data/hawaii.sqlite?mode=ro"},
			want: "file:/data/hawaii.sqlite?mode=ro&_busy_timeout=5000",
		},
		{
			name:    "missing dataset",
			cfg:     config.Config{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "nope.sqlite")},
			wantErr: true,
		},
		{
			name:    "pgx without DSN",
			cfg:     config.Config{Driver: "pgx"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDSN_migrateCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	cfg := config.Config{Driver: "sqlite3", Path: filepath.Join(dir, "app.db"), Migrate: true}

	if _, err := buildDSN(cfg); err != nil {
		t.Fatalf("buildDSN() error = %v", err)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Fatalf("directory %s not created: %v", dir, err)
	}
}

func TestOpen(t *testing.T) {
	for _, logSQL := range []bool{false, true} {
		cfg := config.Config{
			Driver:       "sqlite3",
			Path:         filepath.Join(t.TempDir(), "app.db"),
			Migrate:      true,
			MaxOpenConns: 2,
			MaxIdleConns: 1,
			LogSQL:       logSQL,
		}
		conn, err := Open(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Open(logSQL=%v) error = %v", logSQL, err)
		}
		if got := conn.Stats().MaxOpenConnections; got != 2 {
			t.Errorf("MaxOpenConnections = %d; want 2", got)
		}
		if err := Close(conn); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

func TestOpen_unsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{Driver: "mysql", DSN: "x"})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("Open() error = %v; want unsupported driver", err)
	}
}

func TestClose_nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v; want nil", err)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver, in, want string
	}{
		{driver: "sqlite3", in: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = ? AND b = ?"},
		{driver: "pgx", in: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{driver: "pgx", in: "SELECT '?' FROM t WHERE a = ?", want: "SELECT '?' FROM t WHERE a = $1"},
		{driver: "pgx", in: "SELECT 1", want: "SELECT 1"},
	}
	for _, tt := range tests {
		if got := Rebind(tt.driver, tt.in); got != tt.want {
			t.Errorf("Rebind(%q, %q) = %q; want %q", tt.driver, tt.in, got, tt.want)
		}
	}
}

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

func TestVerifySchema(t *testing.T) {
	t.Run("accepts the declared mapping", func(t *testing.T) {
		conn := openMemory(t)
		_, err := conn.Exec(`
			CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, prcp FLOAT, tobs FLOAT);
			CREATE TABLE station (id INTEGER PRIMARY KEY, station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT);
		`)
		if err != nil {
			t.Fatalf("create tables: %v", err)
		}
		if err := VerifySchema(context.Background(), conn); err != nil {
			t.Fatalf("VerifySchema() = %v; want nil", err)
		}
	})

	t.Run("missing table", func(t *testing.T) {
		conn := openMemory(t)
		if _, err := conn.Exec(`CREATE TABLE measurement (station TEXT, date TEXT, prcp FLOAT, tobs FLOAT)`); err != nil {
			t.Fatalf("create table: %v", err)
		}
		err := VerifySchema(context.Background(), conn)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("VerifySchema() = %v; want *SchemaError", err)
		}
		if schemaErr.Table != "station" {
			t.Errorf("Table = %q; want station", schemaErr.Table)
		}
	})

	t.Run("missing column", func(t *testing.T) {
		conn := openMemory(t)
		_, err := conn.Exec(`
			CREATE TABLE measurement (station TEXT, date TEXT, tobs FLOAT);
			CREATE TABLE station (station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT);
		`)
		if err != nil {
			t.Fatalf("create tables: %v", err)
		}
		err = VerifySchema(context.Background(), conn)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) || schemaErr.Table != "measurement" {
			t.Fatalf("VerifySchema() = %v; want *SchemaError for measurement", err)
		}
	})
}
