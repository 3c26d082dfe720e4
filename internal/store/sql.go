// internal/store/sql.go
//
// SQL-backed implementation of Store.
// Responsibilities:
//   - Opening the database with dialect defaults (SQLite: WAL, busy timeout).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Reading and writing rows of the kv table.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrationsFS embed.FS

// SQLStore keeps records in a kv table.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

// OpenSQL opens (and for SQLite creates) the database and migrates it.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	conn, err := d.dsn(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driverName(), conn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driverName(), err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driverName(), err)
	}
	if err := d.configure(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db, d); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db, d: d}, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// Save upserts value under key.
func (s *SQLStore) Save(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.d.rewrite(s.d.upsert()), key, value)
	return err
}

// Load returns the value under key or ErrNotFound.
func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, s.d.rewrite(`SELECT v FROM kv WHERE k = ?`), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

// Clear deletes key.
func (s *SQLStore) Clear(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.d.rewrite(`DELETE FROM kv WHERE k = ?`), key)
	return err
}

// migrate applies the dialect's embedded *.sql files in lexical order.
// Each file runs in its own transaction and is recorded in _migrations so it
// is applied once.
func migrate(db *sql.DB, d dialect) error {
	if _, err := db.Exec(d.migrationsTable()); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, d.migrationsDir())
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var done int
		err := db.QueryRow(d.rewrite(`SELECT 1 FROM _migrations WHERE name = ?`), name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrationsFS.ReadFile(path.Join(d.migrationsDir(), name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(d.rewrite(`INSERT INTO _migrations (name) VALUES (?)`), name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		log.Info().Str("migration", name).Str("driver", d.driverName()).Msg("applied")
	}
	return nil
}
