package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/types"
	"surfsup-server/internal/observability"
)

//go:embed sql/get-measurements.sql
var getMeasurementsSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-temperature-aggregate.sql
var getTemperatureAggregateSQL string

const (
	opMeasurements = "measurements"
	opStations     = "stations"
	opAggregate    = "temperature_aggregate"
)

// DataSourceError reports a failed read against the store.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

type ClimateRepository interface {
	GetMeasurements(ctx context.Context, filter types.Filter) ([]types.Measurement, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetTemperatureAggregate(ctx context.Context, filter types.Filter) (types.Aggregate, error)
}

type repositoryImpl struct {
	db      *sql.DB
	driver  string
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewRepository returns a ClimateRepository over conn. driverName selects the
// placeholder syntax; metrics may be nil.
func NewRepository(conn *sql.DB, driverName string, metrics *observability.Metrics) ClimateRepository {
	return &repositoryImpl{
		db:      conn,
		driver:  driverName,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
}

func (r *repositoryImpl) GetMeasurements(ctx context.Context, filter types.Filter) ([]types.Measurement, error) {
	query, args := withFilter(getMeasurementsSQL, filter)
	query += "\nORDER BY date ASC"

	var out []types.Measurement
	err := r.read(ctx, opMeasurements, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, db.Rebind(r.driver, query), args...)
		if err != nil {
			return err
		}
		defer func() {
			if err := rows.Close(); err != nil {
				slog.Error("close measurement rows", "error", err)
			}
		}()
		for rows.Next() {
			var (
				m    types.Measurement
				prcp sql.NullFloat64
			)
			if err := rows.Scan(&m.StationID, &m.Date, &prcp, &m.TemperatureObserved); err != nil {
				return err
			}
			m.Precipitation = nullFloat(prcp)
			out = append(out, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	var out []types.Station
	err := r.read(ctx, opStations, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, getStationsSQL)
		if err != nil {
			return err
		}
		defer func() {
			if err := rows.Close(); err != nil {
				slog.Error("close station rows", "error", err)
			}
		}()
		for rows.Next() {
			var (
				s             types.Station
				lat, lon, elv sql.NullFloat64
			)
			if err := rows.Scan(&s.StationID, &s.Name, &lat, &lon, &elv); err != nil {
				return err
			}
			s.Latitude, s.Longitude, s.Elevation = nullFloat(lat), nullFloat(lon), nullFloat(elv)
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTemperatureAggregate always yields exactly one row, as a SQL aggregate
// over an empty set does; the fields are then nil.
func (r *repositoryImpl) GetTemperatureAggregate(ctx context.Context, filter types.Filter) (types.Aggregate, error) {
	query, args := withFilter(getTemperatureAggregateSQL, filter)

	var agg types.Aggregate
	err := r.read(ctx, opAggregate, func(tx *sql.Tx) error {
		var tmin, tavg, tmax sql.NullFloat64
		if err := tx.QueryRowContext(ctx, db.Rebind(r.driver, query), args...).Scan(&tmin, &tavg, &tmax); err != nil {
			return err
		}
		agg = types.Aggregate{Min: nullFloat(tmin), Avg: nullFloat(tavg), Max: nullFloat(tmax)}
		return nil
	})
	if err != nil {
		return types.Aggregate{}, err
	}
	return agg, nil
}

// read runs fn inside its own read-only transaction. The transaction is
// released on every path; nothing is held between calls.
func (r *repositoryImpl) read(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	start := r.clock.Now()
	defer func() {
		r.metrics.ObserveQuery(op, r.clock.Since(start), err)
		if err != nil {
			err = &DataSourceError{Op: op, Err: err}
		}
	}()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("rollback read transaction", "op", op, "error", rbErr)
		}
	}()

	return fn(tx)
}

func withFilter(base string, f types.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.From != "" {
		conds = append(conds, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "date <= ?")
		args = append(args, f.To)
	}
	if f.StationID != "" {
		conds = append(conds, "station = ?")
		args = append(args, f.StationID)
	}

	query := strings.TrimSpace(base)
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	return query, args
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
