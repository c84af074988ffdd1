package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/workdeck/planner/internal/config"
	"github.com/workdeck/planner/internal/constants"
	"github.com/workdeck/planner/internal/logger"
	"github.com/workdeck/planner/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Directory containing the .env config file." type:"path" default:"."`

	Serve    ServeCmd    `cmd:"" help:"Run the planner HTTP service." default:"1"`
	Init     InitCmd     `cmd:"" help:"Initialize planner storage."`
	Migrate  MigrateCmd  `cmd:"" help:"Run database migrations."`
	Keyring  KeyringCmd  `cmd:"" help:"Manage database credentials in the OS keyring."`
	Standard StandardCmd `cmd:"" help:"Print the built-in standard workday template."`
}

// appContext carries the loaded config and store into commands.
type appContext struct {
	cfg   config.Config
	store storage.Provider
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Energy-aware day-scheduling service"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: cfg.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dsn, err := cfg.ResolveDSN()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var store storage.Provider
	if storage.IsPostgresDSN(dsn) {
		store = storage.NewPostgresStore(dsn)
	} else {
		path := dsn
		if path == "" {
			path = defaultDBPath()
		}
		store = storage.NewSQLiteStore(path)
	}

	if ctx.Selected() != nil && needsLoadedStore(ctx.Selected().Name) {
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := ctx.Run(&appContext{cfg: cfg, store: store}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func needsLoadedStore(cmd string) bool {
	switch cmd {
	case "init", "migrate", "keyring", "standard":
		return false
	}
	return true
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "planner.db"
	}
	return home + "/.config/planner/planner.db"
}
