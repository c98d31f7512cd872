package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"hub-notifier/internal/config"
	"hub-notifier/migrations"
	"hub-notifier/pkg/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to optional .env file")
	command := flag.String("command", "up", "up, down, steps, force or version")
	steps := flag.Int("n", 0, "number of steps for -command=steps (negative rolls back)")
	version := flag.Int("version", -1, "version for -command=force")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "hub-notifier-migrate").Logger()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Database.URL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(lvl)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	migrator := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, pool, log)

	if err := run(migrator, *command, *steps, *version); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("migration command failed")
	}
}

func run(m *migration.Migrator, command string, steps, version int) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		if steps == 0 {
			return fmt.Errorf("-n must be non-zero for steps")
		}
		return m.Steps(steps)
	case "force":
		if version < 0 {
			return fmt.Errorf("-version is required for force")
		}
		return m.ForceVersion(version)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
