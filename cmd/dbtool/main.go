// Command dbtool maintains the readings database outside the running service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/config"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/db"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/logging"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/migrate"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/export"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/repository"
)

const (
	appName = "dbtool"
	version = "dev"
)

const usage = `usage: %s <command>
  migrate     apply pending schema migrations
  export-csv  write every reading as CSV to stdout, newest first
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintf(stderr, usage, args[0])
		return 2
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 1
	}
	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	conn, err := db.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "db open: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	switch args[1] {
	case "migrate":
		if err := migrate.Run(ctx, conn); err != nil {
			fmt.Fprintf(stderr, "migrate: %v\n", err)
			return 1
		}
		fmt.Fprintln(stderr, "migrations applied")
	case "export-csv":
		readings, err := repository.NewRepository(conn).ExportAll(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "export: %v\n", err)
			return 1
		}
		if err := export.WriteCSV(stdout, readings); err != nil {
			fmt.Fprintf(stderr, "export: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[1])
		fmt.Fprintf(stderr, usage, args[0])
		return 2
	}
	return 0
}
