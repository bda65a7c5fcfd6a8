// Package main is the entry point for the vidfeed database migration tool.
// It applies the embedded schema migrations for the configured driver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/prn-tf/vidfeed/internal/app"
	"github.com/prn-tf/vidfeed/internal/config"
	"github.com/prn-tf/vidfeed/internal/repository"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	flags := pflag.NewFlagSet(command, pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to the config file")
	_ = flags.Parse(os.Args[2:])

	switch command {
	case "version":
		fmt.Printf("vidfeed migration tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		exitOnError(withDatabase(*configPath, func(ctx context.Context, db repository.Database) error {
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			status, err := db.MigrationStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Schema at version %d\n", status.Current)
			return nil
		}))

	case "status":
		exitOnError(withDatabase(*configPath, func(ctx context.Context, db repository.Database) error {
			status, err := db.MigrationStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Current version: %d\n", status.Current)
			fmt.Printf("Latest version:  %d\n", status.Latest)
			if status.Pending() {
				fmt.Println("Pending migrations: yes (run \"vidfeed-migrate up\")")
			} else {
				fmt.Println("Pending migrations: none")
			}
			return nil
		}))

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func withDatabase(configPath string, fn func(context.Context, repository.Database) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.Logging, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, _, err := app.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vidfeed migration tool

Usage:
  vidfeed-migrate <command> [--config path]

Commands:
  up          Apply all pending migrations
  status      Show the applied and latest schema versions
  version     Print version information
  help        Show this help message

Configuration is read from the config file and VIDFEED_* environment
variables, for example:
  VIDFEED_DATABASE_DRIVER=sqlite VIDFEED_DATABASE_PATH=./data/vidfeed.db`)
}
