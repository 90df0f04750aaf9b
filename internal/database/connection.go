package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ecommerce-platform/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type DB struct {
	*sql.DB
	Driver string
}

// NewConnection opens and pings the configured database.
func NewConnection(cfg config.DatabaseConfig) (*DB, error) {
	return Open(cfg.Driver, DSN(cfg))
}

// DSN builds the driver-specific data source name.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.Driver == DriverSQLite {
		path := cfg.URL
		if path == "" {
			path = cfg.DBName + ".db"
		}
		return sqliteDSN(path)
	}

	// Use full URL if available, otherwise construct from components
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

// Open opens a connection with pool settings suited to the driver.
func Open(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// OpenSQLite opens a SQLite file database. Used by tests and local tooling.
func OpenSQLite(path string) (*DB, error) {
	return Open(DriverSQLite, sqliteDSN(path))
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations runs all pending database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	return NewMigrator(db.DB, nil).RunMigrations(ctx)
}
