package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"surfsup-server/internal/config"
	"surfsup-server/internal/db"
	"surfsup-server/internal/migrate"
)

const usage = `usage: %s <command>
  migrate  apply pending schema migrations
  status   list migrations that have not been applied
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "dotenv error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	// The tool may be pointed at a path that does not exist yet.
	cfg.Migrate = true

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	m := migrate.New(conn, cfg.Driver)
	switch os.Args[1] {
	case "migrate":
		if err := m.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migrations applied")
	case "status":
		pending, err := m.Pending(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "status: %v\n", err)
			os.Exit(1)
		}
		if len(pending) == 0 {
			fmt.Println("up to date")
			return
		}
		for _, mig := range pending {
			fmt.Printf("pending %s_%s\n", mig.Version, mig.Name)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
