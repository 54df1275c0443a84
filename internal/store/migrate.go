package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tartampluch/go-valentine/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir = "migrations"
	sourceName    = "iofs"
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m *migrate.Migrate
}

// Migrator builds a migrator sharing the store connection. It is never closed
// through migrate, which would close the shared pool as well.
func (s *Store) Migrator() (*Migrator, error) {
	src, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrMigrateInit, err)
	}

	var drv database.Driver
	switch s.driver {
	case config.DriverSQLite:
		drv, err = migratesqlite.WithInstance(s.db.DB, &migratesqlite.Config{})
	case config.DriverPostgres:
		drv, err = migratepg.WithInstance(s.db.DB, &migratepg.Config{})
	default:
		err = fmt.Errorf("%s: %q", config.ErrDBDriver, s.driver)
	}
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrMigrateInit, err)
	}

	m, err := migrate.NewWithInstance(sourceName, src, s.driver, drv)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrMigrateInit, err)
	}
	return &Migrator{m: m}, nil
}

// Up applies n pending migrations, or all of them when n <= 0.
// It reports false when the schema was already current.
func (g *Migrator) Up(n int) (bool, error) {
	var err error
	if n > 0 {
		err = g.m.Steps(n)
	} else {
		err = g.m.Up()
	}
	return applied(err)
}

// Down reverts n migrations, or all of them when n <= 0.
func (g *Migrator) Down(n int) (bool, error) {
	var err error
	if n > 0 {
		err = g.m.Steps(-n)
	} else {
		err = g.m.Down()
	}
	return applied(err)
}

// Version returns the current schema version. A fresh database reports 0.
func (g *Migrator) Version() (uint, bool, error) {
	v, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", config.ErrMigrate, err)
	}
	return v, dirty, nil
}

func applied(err error) (bool, error) {
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", config.ErrMigrate, err)
	}
	return true, nil
}

// Migrate brings the schema up to date.
func (s *Store) Migrate() error {
	g, err := s.Migrator()
	if err != nil {
		return err
	}
	if _, err := g.Up(0); err != nil {
		return err
	}
	s.log.Info(config.MsgMigrated, config.LogKeyDriver, s.driver)
	return nil
}
