// internal/store/dialect.go
//
// SQL dialect differences for the kv table: driver name, DSN tweaks,
// placeholder style, upsert syntax and connection setup.

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// dialect captures what differs between the supported databases.
type dialect interface {
	driverName() string
	dsn(path string) (string, error)
	rewrite(query string) string
	upsert() string
	migrationsTable() string
	configure(db *sql.DB) error
	migrationsDir() string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "sqlite-pure":
		return sqliteDialect{pure: true}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported sql driver %q", driver)
}

var placeholder = regexp.MustCompile(`\?`)

// numbered converts ? placeholders to $1, $2, ...
func numbered(query string) string {
	n := 0
	return placeholder.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}

// ---------------------------------------------------------------- sqlite

// sqliteDialect drives mattn/go-sqlite3, or the cgo-free modernc.org/sqlite
// when pure is set. Both share SQL and migrations.
type sqliteDialect struct {
	pure bool
}

func (d sqliteDialect) driverName() string {
	if d.pure {
		return "sqlite"
	}
	return "sqlite3"
}

// dsn ensures the parent directory exists (./data/app.db etc.) and adds a
// busy timeout plus WAL journaling.
func (d sqliteDialect) dsn(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if d.pure {
		return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL", nil
}

func (sqliteDialect) rewrite(q string) string { return q }

func (sqliteDialect) upsert() string {
	return `INSERT INTO kv (k, v) VALUES (?, ?)
	        ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`
}

func (sqliteDialect) migrationsTable() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`
}

func (sqliteDialect) configure(db *sql.DB) error {
	// A single writer avoids SQLITE_BUSY on the local file.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{`PRAGMA foreign_keys = ON`, `PRAGMA journal_mode = WAL`} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set pragmas: %w", err)
		}
	}
	return nil
}

func (sqliteDialect) migrationsDir() string { return "migrations/sqlite" }

// -------------------------------------------------------------- postgres

type postgresDialect struct{}

func (postgresDialect) driverName() string             { return "postgres" }
func (postgresDialect) dsn(url string) (string, error) { return url, nil }
func (postgresDialect) rewrite(q string) string        { return numbered(q) }

func (postgresDialect) upsert() string {
	return `INSERT INTO kv (k, v) VALUES (?, ?)
	        ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = CURRENT_TIMESTAMP`
}

func (postgresDialect) migrationsTable() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`
}

func (postgresDialect) configure(db *sql.DB) error {
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

func (postgresDialect) migrationsDir() string { return "migrations/postgres" }

// ----------------------------------------------------------------- mysql

type mysqlDialect struct{}

func (mysqlDialect) driverName() string             { return "mysql" }
func (mysqlDialect) dsn(url string) (string, error) { return url, nil }
func (mysqlDialect) rewrite(q string) string        { return q }

func (mysqlDialect) upsert() string {
	return `INSERT INTO kv (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`
}

func (mysqlDialect) migrationsTable() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name VARCHAR(191) PRIMARY KEY);`
}

func (mysqlDialect) configure(db *sql.DB) error {
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

func (mysqlDialect) migrationsDir() string { return "migrations/mysql" }
