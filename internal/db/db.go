// Package db opens the SQL connection pool and applies migrations.
//
// Two drivers are supported through database/sql: "sqlite" (modernc.org/sqlite,
// pure Go, the default) and "pgx" (Postgres via pgx's stdlib adapter). Queries
// use $N placeholders, which both drivers accept.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open connects, pings and migrates.
func Open(driver, connection string) (*sqlx.DB, error) {
	db, err := Init(driver, connection)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db.DB, driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Init(driver, connection string) (*sqlx.DB, error) {
	memory := driver == "sqlite" && strings.Contains(connection, ":memory:")

	// SQLite: create data directory if needed
	if driver == "sqlite" && !memory {
		dir := filepath.Dir(strings.SplitN(connection, "?", 2)[0])
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("db: creating data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("db: connecting: %w", err)
	}

	if memory {
		// Every new connection to ":memory:" is a different, empty database.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("db: enabling foreign keys: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
