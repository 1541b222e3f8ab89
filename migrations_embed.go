package main

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"restaurant-backoffice/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Embed migrations into the binary so `backoffice migrate` works
// regardless of the current working directory.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func newMigrate(cfg config.DBConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	// the pgx/v5 driver registers itself as pgx5://
	url := "pgx5://" + strings.TrimPrefix(cfg.DSN(), "postgres://")
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// applyMigrations runs all pending up migrations.
func applyMigrations(cfg config.DBConfig, log *zap.Logger) error {
	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// rollbackMigrations undoes the last steps migrations.
func rollbackMigrations(cfg config.DBConfig, steps int, log *zap.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	log.Info("migrations rolled back", zap.Int("steps", steps))
	return nil
}

func closeMigrate(m *migrate.Migrate, log *zap.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		log.Warn("close migrate", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
	}
}
