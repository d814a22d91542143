package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/statusboard/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores views, records, and option metadata for standalone boards.
type Repository struct {
	db    *sql.DB
	clock func() time.Time
}

// Open opens the database at path, creating its directory and schema.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a shared in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, clock: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema idempotently.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS views (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS view_columns (
			view_id TEXT NOT NULL,
			name TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			data_type TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			PRIMARY KEY(view_id, name),
			FOREIGN KEY(view_id) REFERENCES views(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			values_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_entity ON records(entity_type, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS attributes (
			entity_type TEXT NOT NULL,
			logical_name TEXT NOT NULL,
			user_label TEXT NOT NULL DEFAULT '',
			PRIMARY KEY(entity_type, logical_name)
		);`,
		`CREATE TABLE IF NOT EXISTS attribute_labels (
			entity_type TEXT NOT NULL,
			logical_name TEXT NOT NULL,
			language_code INTEGER NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY(entity_type, logical_name, language_code),
			FOREIGN KEY(entity_type, logical_name) REFERENCES attributes(entity_type, logical_name) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS attribute_options (
			entity_type TEXT NOT NULL,
			logical_name TEXT NOT NULL,
			position INTEGER NOT NULL,
			value INTEGER NOT NULL,
			state INTEGER,
			color TEXT NOT NULL DEFAULT '',
			user_label TEXT NOT NULL DEFAULT '',
			PRIMARY KEY(entity_type, logical_name, position),
			FOREIGN KEY(entity_type, logical_name) REFERENCES attributes(entity_type, logical_name) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS option_labels (
			entity_type TEXT NOT NULL,
			logical_name TEXT NOT NULL,
			position INTEGER NOT NULL,
			language_code INTEGER NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY(entity_type, logical_name, position, language_code),
			FOREIGN KEY(entity_type, logical_name, position) REFERENCES attribute_options(entity_type, logical_name, position) ON DELETE CASCADE
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside one transaction.
func (r *Repository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) now() time.Time {
	return r.clock().UTC()
}

// translateNoRows maps zero affected rows to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// translateErrNoRows maps sql.ErrNoRows to app.ErrNotFound.
func translateErrNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return app.ErrNotFound
	}
	return err
}

// ts formats timestamps for storage.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses stored timestamps.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
