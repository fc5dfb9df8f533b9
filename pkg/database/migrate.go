package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrations embed.FS

// Migrate brings the database schema up to date.
func Migrate(opts *Options) error {
	opts.SetDefaults()
	driver, err := opts.Driver()
	if err != nil {
		return err
	}
	if driver == DriverSQLite {
		// sqlite migrates as it's opened
		db, err := NewSQLite(opts)
		if err != nil {
			return err
		}
		return db.Close()
	}

	db, err := sql.Open("postgres", opts.expandedURL())
	if err != nil {
		return err
	}
	defer db.Close()

	instance, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrations, "migrations/postgres")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, DriverPostgres, instance)
	if err != nil {
		return err
	}
	defer m.Close()

	return up(m)
}

// migrateSQLite runs migrations over an already open connection. The migrate
// instance is not closed since that would close db.
func migrateSQLite(db *sql.DB) error {
	instance, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrations, "migrations/sqlite")
	if err != nil {
		return err
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, DriverSQLite, instance)
	if err != nil {
		return err
	}
	return up(m)
}

func up(m *migrate.Migrate) error {
	err := m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug().Msg("database schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrated database schema")
	return nil
}
