// Package main is the entry point for the vidfeed admin CLI.
// This tool provides administrative commands for managing users and for
// inspecting upload grants.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/prn-tf/vidfeed/internal/app"
	"github.com/prn-tf/vidfeed/internal/config"
	"github.com/prn-tf/vidfeed/internal/service"
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

	switch command {
	case "version":
		fmt.Printf("vidfeed admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		exitOnError(userCommand(os.Args[2:]))

	case "presign":
		exitOnError(presignCommand(os.Args[2:]))

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func userCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("user: missing subcommand (create, disable, enable)")
	}

	flags := pflag.NewFlagSet("user "+args[0], pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to the config file")
	username := flags.String("username", "", "account username")
	email := flags.String("email", "", "account email (create)")
	password := flags.String("password", "", "account password (create)")
	_ = flags.Parse(args[1:])

	if *username == "" {
		return fmt.Errorf("user %s: --username is required", args[0])
	}

	return withApp(*configPath, func(ctx context.Context, a *app.App) error {
		switch args[0] {
		case "create":
			user, err := a.Users.Register(ctx, service.RegisterInput{
				Username: *username,
				Email:    *email,
				Password: *password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (%s)\n", user.Username, user.ID)
			return nil

		case "disable", "enable":
			active := args[0] == "enable"
			if err := a.Users.SetActive(ctx, *username, active); err != nil {
				return err
			}
			fmt.Printf("User %s active=%t\n", *username, active)
			return nil

		default:
			return fmt.Errorf("user: unknown subcommand %q", args[0])
		}
	})
}

func presignCommand(args []string) error {
	flags := pflag.NewFlagSet("presign", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to the config file")
	key := flags.String("key", "", "object key (default: a new random id)")
	_ = flags.Parse(args)

	if *key == "" {
		*key = uuid.NewString()
	}

	return withApp(*configPath, func(ctx context.Context, a *app.App) error {
		grant, err := a.Presign.PresignPost(ctx, a.Config.Storage.VideosBucket, *key)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(grant)
	})
}

func withApp(configPath string, fn func(context.Context, *app.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.Logging, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vidfeed admin CLI

Usage:
  vidfeed-admin <command> [arguments]

Commands:
  user        Manage users (create, disable, enable)
  presign     Issue an upload grant and print it as JSON
  version     Print version information
  help        Show this help message

Examples:
  vidfeed-admin user create --username alice --email alice@example.com --password s3cretpass
  vidfeed-admin user disable --username alice
  vidfeed-admin presign --key 11111111-1111-1111-1111-111111111111

All commands accept --config <path>; VIDFEED_* environment variables override
file values.`)
}
