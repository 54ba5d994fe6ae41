package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DateLayout is the ISO 8601 calendar date format used by the dataset.
const DateLayout = "2006-01-02"

const (
	defaultReferenceEndDate = "2017-08-23"
	defaultTobsStationID    = "USC00519281"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// CORSAllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
	Migrate         bool

	// ReferenceEndDate anchors the trailing-year window. It is the latest
	// date present in the dataset, not the wall clock.
	ReferenceEndDate time.Time
	TobsStationID    string
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	appEnv := envOrDefault("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	httpAddr := envOrDefault("HTTP_ADDR", ":8080")
	origins := parseList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if shutdownTimeout <= 0 {
		return Config{}, errors.New("SHUTDOWN_TIMEOUT must be > 0")
	}

	driver := envOrDefault("DB_DRIVER", "sqlite3")
	switch driver {
	case "sqlite3", "pgx":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, pgx)", driver)
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if driver == "pgx" && dsn == "" {
		return Config{}, errors.New("DB_DSN is required when DB_DRIVER=pgx")
	}
	path := envOrDefault("SQLITE_PATH", "Resources/hawaii.sqlite")

	maxOpenConns, err := parseInt("DB_MAX_OPEN_CONNS", "4")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := parseInt("DB_MAX_IDLE_CONNS", "4")
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := parseDuration("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}
	logSQL, err := parseBool("DB_LOG_SQL", "false")
	if err != nil {
		return Config{}, err
	}
	migrate, err := parseBool("DB_MIGRATE", "false")
	if err != nil {
		return Config{}, err
	}

	refStr := envOrDefault("REFERENCE_END_DATE", defaultReferenceEndDate)
	refEnd, err := time.Parse(DateLayout, refStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REFERENCE_END_DATE %q (expected YYYY-MM-DD): %w", refStr, err)
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           httpAddr,
		CORSAllowedOrigins: origins,
		ShutdownTimeout:    shutdownTimeout,
		Driver:             driver,
		DSN:                dsn,
		Path:               path,
		MaxOpenConns:       maxOpenConns,
		MaxIdleConns:       maxIdleConns,
		ConnMaxLifetime:    connMaxLifetime,
		LogSQL:             logSQL,
		Migrate:            migrate,
		ReferenceEndDate:   refEnd,
		TobsStationID:      envOrDefault("TOBS_STATION_ID", defaultTobsStationID),
	}, nil
}

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func parseInt(key, def string) (int, error) {
	s := envOrDefault(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseBool(key, def string) (bool, error) {
	s := envOrDefault(key, def)
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
