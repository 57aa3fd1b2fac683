package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"btc-dashboard/internal/config"
	"btc-dashboard/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	cmdUp      = "up"
	cmdDown    = "down"
	cmdVersion = "version"

	usage = "usage: go run ./cmd/migrate [up|down|version] [steps]"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	openPool       = pgxpool.New
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Warn().Err(err).Msg("invalid log settings, using defaults")
	}

	if len(os.Args) < 2 {
		log.Fatal().Msg(usage)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	if err := run(ctx, pool, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("migrate failed")
	}
}

func run(ctx context.Context, db migrationDB, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := ensureMigrationTable(ctx, db); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	switch args[0] {
	case cmdUp:
		applied, err := applyUp(ctx, db, migrations)
		if err != nil {
			return fmt.Errorf("apply migrations up: %w", err)
		}
		log.Info().Int("applied", applied).Msg("migrations up complete")
	case cmdDown:
		steps, err := parseSteps(args[1:])
		if err != nil {
			return err
		}
		rolledBack, err := applyDown(ctx, db, migrations, steps)
		if err != nil {
			return fmt.Errorf("apply migrations down: %w", err)
		}
		log.Info().Int("rolled_back", rolledBack).Msg("migrations down complete")
	case cmdVersion:
		version, name, err := currentVersion(ctx, db)
		if err != nil {
			return fmt.Errorf("read current version: %w", err)
		}
		if version == 0 {
			log.Info().Msg("no migrations applied")
			return nil
		}
		log.Info().Int64("version", version).Str("name", name).Msg("current version")
	default:
		return fmt.Errorf("unknown command %q. %s", args[0], usage)
	}
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid down steps: %q", args[0])
	}
	return n, nil
}
