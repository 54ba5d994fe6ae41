package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SchemaVersion identifies the record mapping below. Bump it whenever a
// table or column list changes.
const SchemaVersion = 1

// Table declares the columns this service reads from one table.
type Table struct {
	Name    string
	Columns []string
}

var (
	MeasurementTable = Table{
		Name:    "measurement",
		Columns: []string{"station", "date", "prcp", "tobs"},
	}
	StationTable = Table{
		Name:    "station",
		Columns: []string{"station", "name", "latitude", "longitude", "elevation"},
	}
)

// Tables lists every table the climate API depends on.
var Tables = []Table{MeasurementTable, StationTable}

// SchemaError reports a table that does not match the declared mapping.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema v%d: table %q: %v", SchemaVersion, e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// VerifySchema checks that every declared table and column exists. It issues
// a zero-row SELECT per table, which works for both sqlite3 and pgx.
func VerifySchema(ctx context.Context, db *sql.DB) error {
	for _, t := range Tables {
		q := fmt.Sprintf("SELECT %s FROM %s LIMIT 0", strings.Join(t.Columns, ", "), t.Name)
		rows, err := db.QueryContext(ctx, q)
		if err != nil {
			return &SchemaError{Table: t.Name, Err: err}
		}
		cols, err := rows.Columns()
		closeErr := rows.Close()
		if err != nil {
			return &SchemaError{Table: t.Name, Err: err}
		}
		if closeErr != nil {
			return &SchemaError{Table: t.Name, Err: closeErr}
		}
		if len(cols) != len(t.Columns) {
			return &SchemaError{Table: t.Name, Err: fmt.Errorf("got %d columns, want %d", len(cols), len(t.Columns))}
		}
	}
	return nil
}
