package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const defaultMigrationsTable = "schema_migrations"

// Config содержит настройки миграций
type Config struct {
	// MigrationsFS - источник SQL-файлов (обычно embed.FS).
	MigrationsFS fs.FS
	// MigrationsPath - каталог внутри MigrationsFS, "." для корня.
	MigrationsPath string
	// MigrationsTable - таблица версий, по умолчанию schema_migrations.
	MigrationsTable string
	LockTimeout     time.Duration
}

// Migrator применяет и откатывает миграции поверх пула pgx
type Migrator struct {
	config Config
	pool   *pgxpool.Pool
	log    zerolog.Logger
}

func NewMigrator(config Config, pool *pgxpool.Pool, log zerolog.Logger) *Migrator {
	if config.MigrationsPath == "" {
		config.MigrationsPath = "."
	}
	if config.MigrationsTable == "" {
		config.MigrationsTable = defaultMigrationsTable
	}
	if config.LockTimeout == 0 {
		config.LockTimeout = 30 * time.Second
	}
	return &Migrator{
		config: config,
		pool:   pool,
		log:    log.With().Str("component", "migrator").Logger(),
	}
}

// Up применяет все доступные миграции. Отсутствие изменений - не ошибка.
func (m *Migrator) Up() error {
	return m.run("up", func(mg *migrate.Migrate) error { return mg.Up() })
}

// Down откатывает все миграции.
func (m *Migrator) Down() error {
	return m.run("down", func(mg *migrate.Migrate) error { return mg.Down() })
}

// Steps применяет n миграций вперед (n > 0) или назад (n < 0).
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("steps %d", n), func(mg *migrate.Migrate) error { return mg.Steps(n) })
}

// ForceVersion принудительно выставляет версию, снимая флаг dirty.
func (m *Migrator) ForceVersion(version int) error {
	return m.run(fmt.Sprintf("force %d", version), func(mg *migrate.Migrate) error { return mg.Force(version) })
}

// Version возвращает текущую версию. Пустая база - (0, false, nil).
func (m *Migrator) Version() (uint, bool, error) {
	mg, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer m.close(mg)

	version, dirty, err := mg.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) run(op string, fn func(*migrate.Migrate) error) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer m.close(mg)

	if err := fn(mg); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info().Str("op", op).Msg("database schema is up to date")
			return nil
		}
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	version, dirty, _ := mg.Version()
	m.log.Info().Str("op", op).Uint("version", version).Bool("dirty", dirty).Msg("database migration finished")
	return nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	db := stdlib.OpenDBFromPool(m.pool)

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable:       m.config.MigrationsTable,
		MigrationsTableQuoted: true,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(m.config.MigrationsFS, m.config.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	mg.LockTimeout = m.config.LockTimeout
	mg.Log = migrateLogger{log: m.log}
	return mg, nil
}

func (m *Migrator) close(mg *migrate.Migrate) {
	srcErr, dbErr := mg.Close()
	if srcErr != nil || dbErr != nil {
		m.log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("failed to close migrator")
	}
}

// migrateLogger пробрасывает логи golang-migrate в zerolog.
type migrateLogger struct {
	log zerolog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug().Msgf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return l.log.GetLevel() <= zerolog.DebugLevel
}
