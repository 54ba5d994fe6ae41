// Package migrate applies the climate schema using a versioned migration table.
// Migration files are named with a 4-digit prefix for order: 0001_name.sql, 0002_other.sql.
//
// The upstream dataset already ships with these tables; migrations exist to
// bootstrap empty stores for development and tests.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"surfsup-server/internal/db"
)

//go:embed sql/*.sql
var sqlFS embed.FS

const (
	migrationsDir = "sql"
	tableName     = "schema_migrations"
)

var migrationFileRe = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migration is one embedded schema step.
type Migration struct {
	Version string
	Name    string
	body    string
}

// Migrator applies embedded migrations to one store.
type Migrator struct {
	db     *sql.DB
	driver string
	clock  clockwork.Clock
	files  fs.FS
}

// New returns a Migrator for conn. driverName selects placeholder syntax.
func New(conn *sql.DB, driverName string) *Migrator {
	return &Migrator{db: conn, driver: driverName, clock: clockwork.NewRealClock(), files: sqlFS}
}

// WithClock overrides the clock used to stamp applied_at.
func (m *Migrator) WithClock(c clockwork.Clock) *Migrator {
	m.clock = c
	return m
}

// Run ensures the schema_migrations table exists, then applies any embedded
// migrations that have not yet been run, in order by version.
func Run(ctx context.Context, conn *sql.DB, driverName string) error {
	return New(conn, driverName).Run(ctx)
}

func (m *Migrator) Run(ctx context.Context) error {
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	for _, mig := range pending {
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("apply %s_%s.sql: %w", mig.Version, mig.Name, err)
		}
		slog.Info("migration applied", "version", mig.Version, "name", mig.Name)
	}
	return nil
}

// Pending lists migrations not yet recorded in schema_migrations, ordered by version.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}

	all, err := m.embedded()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range all {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

func (m *Migrator) embedded() ([]Migration, error) {
	entries, err := fs.ReadDir(m.files, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, ok := parseMigrationFilename(e.Name())
		if !ok {
			continue
		}
		body, err := fs.ReadFile(m.files, migrationsDir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: name, body: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName+` (
			version    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM "+tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func parseMigrationFilename(filename string) (version, name string, ok bool) {
	match := migrationFileRe.FindStringSubmatch(filename)
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// pgx only runs multiple statements in one Exec without parameters;
	// split so both drivers see the same sequence.
	for _, stmt := range splitStatements(mig.body) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx,
		db.Rebind(m.driver, "INSERT INTO "+tableName+" (version, name, applied_at) VALUES (?, ?, ?)"),
		mig.Version, mig.Name, m.clock.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func splitStatements(body string) []string {
	var out []string
	for _, part := range strings.Split(body, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
