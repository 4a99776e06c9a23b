// Command migrate applies or rolls back the PostgreSQL schema.
//
//	migrate up | down [N] | version | force V
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"airport-vms/config"
	pgStorage "airport-vms/internal/adapter/storage/postgres"
	"airport-vms/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
)

func main() {
	if err := config.LoadDotEnv(os.Getenv("AVM_ENV_FILE")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(os.Getenv("AVM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up | down [N] | version | force V")
		os.Exit(2)
	}

	if err := run(cfg, os.Args[1:], log); err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("Migration failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string, log zerolog.Logger) error {
	m, err := pgStorage.NewMigrator(cfg.Database.MigrateURL())
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrator")
		}
	}()

	switch cmd := args[0]; cmd {
	case "up":
		err = m.Up()
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil || steps < 1 {
				return fmt.Errorf("down expects a positive step count, got %q", args[1])
			}
		}
		err = m.Steps(-steps)
	case "force":
		if len(args) < 2 {
			return errors.New("force expects a version")
		}
		v, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], convErr)
		}
		err = m.Force(v)
	case "version":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("No migrations applied")
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	default:
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")
	}
	return nil
}
