package database

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens a database handle for the given URL. Postgres URLs go through
// pgx; anything else is treated as a SQLite file path. Both drivers accept
// the $N placeholders used by the repositories.
func Connect(databaseURL string) (*sqlx.DB, error) {
	driver, dsn := resolveDriver(databaseURL)

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY between the request path
		// and background index builds
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Driver reports which driver Connect would pick for the URL.
func Driver(databaseURL string) string {
	driver, _ := resolveDriver(databaseURL)
	return driver
}

func resolveDriver(databaseURL string) (driver, dsn string) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return "pgx", databaseURL
	}
	dsn = strings.TrimPrefix(databaseURL, "sqlite://")
	return "sqlite", dsn + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
