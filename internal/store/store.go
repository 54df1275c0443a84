package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tartampluch/go-valentine/internal/config"
)

func init() {
	// sqlx only knows the placeholder style of the cgo sqlite drivers.
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Store is the SQL implementation of content.Repository.
type Store struct {
	db     *sqlx.DB
	driver string
	log    *slog.Logger
}

// Open connects to the configured database and checks the connection.
func Open(ctx context.Context, cfg config.DatabaseSettings) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrDBDriver, cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBOpen, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite serialises writers anyway, and every :memory: connection is a
		// separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, config.DBPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrDBPing, err)
	}

	s := New(db, cfg.Driver)
	s.log.Info(config.MsgDBOpened, config.LogKeyDriver, cfg.Driver)
	return s, nil
}

// New wraps an existing connection.
func New(db *sqlx.DB, driver string) *Store {
	return &Store{
		db:     db,
		driver: driver,
		log:    slog.With(config.LogKeyComponent, config.CompStore),
	}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sqlx.DB { return s.db }

// Driver returns the database/sql driver name.
func (s *Store) Driver() string { return s.driver }

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks database health.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBPing, err)
	}
	return nil
}

// withTx executes fn within a transaction.
func (s *Store) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback: %v (original error: %w)", config.ErrDBTx, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", config.ErrDBTx, err)
	}
	return nil
}
