package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/workdeck/planner/internal/allocator"
	"github.com/workdeck/planner/internal/cache"
	"github.com/workdeck/planner/internal/keyring"
	"github.com/workdeck/planner/internal/learner"
	"github.com/workdeck/planner/internal/lock"
	"github.com/workdeck/planner/internal/logger"
	"github.com/workdeck/planner/internal/recommend"
	"github.com/workdeck/planner/internal/registry"
	"github.com/workdeck/planner/internal/schedule"
	"github.com/workdeck/planner/internal/server"
	"github.com/workdeck/planner/internal/storage"
	"github.com/workdeck/planner/internal/tasksupply"
	"github.com/workdeck/planner/internal/template"
	"github.com/workdeck/planner/internal/tracker"
)

// ServeCmd runs the HTTP service until interrupted.
type ServeCmd struct{}

func (c *ServeCmd) Run(app *appContext) error {
	defer app.store.Close()

	sc := cache.New(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB, app.cfg.ScheduleCacheTTL)
	defer sc.Close()

	supply := tasksupply.NewHTTPSupply(app.cfg.TaskSupplyURL, app.cfg.TaskSupplyTimeout)
	locks := lock.NewKeyed()
	l := learner.New(app.store, app.cfg.PatternAlpha)
	defer l.Close()

	reg := registry.New(app.store, sc)
	builder := schedule.NewBuilder(app.store, reg, sc)
	alloc := allocator.NewService(app.store, reg, supply, l, sc, locks)
	rec := recommend.New(builder, l)
	templates := template.NewApplier(app.store, sc)
	track := tracker.New(app.store, supply, l, sc)

	srv := server.New(server.Options{
		Registry:    reg,
		Allocator:   alloc,
		Builder:     builder,
		Recommender: rec,
		Learner:     l,
		Templates:   templates,
		Tracker:     track,
		Port:        app.cfg.ServerPort,
		Production:  app.cfg.Environment == "production",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// InitCmd creates the database and applies all migrations.
type InitCmd struct{}

func (c *InitCmd) Run(app *appContext) error {
	if err := app.store.Init(); err != nil {
		return err
	}
	logger.Info("storage initialized", "path", app.store.GetConfigPath())
	return nil
}

// MigrateCmd applies pending migrations to an existing database.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *appContext) error {
	return app.store.Init()
}

// KeyringCmd manages the database connection string in the OS keyring.
type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a connection string."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Report whether credentials are stored."`
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string, credentials included."`
}

func (c *KeyringSetCmd) Run(app *appContext) error {
	if !storage.IsPostgresDSN(c.ConnectionString) {
		return fmt.Errorf("keyring storage only applies to PostgreSQL connection strings")
	}
	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in OS keyring.")
	return nil
}

type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(app *appContext) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		return err
	}
	fmt.Println("Connection string removed from OS keyring.")
	return nil
}

type KeyringStatusCmd struct{}

func (c *KeyringStatusCmd) Run(app *appContext) error {
	if !keyring.IsAvailable() {
		fmt.Println("OS keyring: unavailable")
		return nil
	}
	if _, err := keyring.GetConnectionString(); err != nil {
		fmt.Println("OS keyring: available, no credentials stored")
		return nil
	}
	fmt.Println("OS keyring: credentials stored")
	return nil
}

// StandardCmd prints the built-in workday template as JSON, useful for
// seeding via the API.
type StandardCmd struct{}

func (c *StandardCmd) Run(app *appContext) error {
	tpl := template.StandardWorkday("", "")
	out, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
