package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"surfsup-server/internal/config"
	"surfsup-server/internal/db"
	"surfsup-server/internal/httpapi"
	"surfsup-server/internal/migrate"
	"surfsup-server/internal/modules/climate"
	climateviews "surfsup-server/internal/modules/climate/views"
	"surfsup-server/internal/observability"
)

// Run opens the store, serves the climate API on cfg.HTTPAddr and blocks
// until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"corsAllowedOrigins", cfg.CORSAllowedOrigins,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbLogSQL", cfg.LogSQL,
		"dbMigrate", cfg.Migrate,
		"referenceEndDate", cfg.ReferenceEndDate.Format(config.DateLayout),
		"tobsStationID", cfg.TobsStationID,
	)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if cfg.Migrate {
		if err := migrate.Run(ctx, dbConn, cfg.Driver); err != nil {
			return err
		}
	}

	// A store without the expected tables would only surface as a 500 on
	// the first request; refuse to start instead.
	if err := db.VerifySchema(ctx, dbConn); err != nil {
		return fmt.Errorf("data source not usable: %w", err)
	}
	slog.Info("database connection successful")

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(dbConn, cfg.Driver),
	)
	metrics := observability.NewMetrics(reg)

	mux := httpapi.NewMux(dbConn, reg)
	climate.RegisterFeature(mux, dbConn, cfg, metrics)

	srv := httpapi.NewServer(cfg, mux, metrics)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
