package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const maxBusyRetries = 3

const memoryPath = ":memory:"

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens the SQLite document store at dbPath and creates the tables
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != memoryPath {
		// Ensure data directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// Set connection pool parameters
	if dbPath == memoryPath {
		// Every connection to :memory: opens its own empty database, so the
		// pool is pinned to one connection that never expires.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	zap.L().Info("Database initialized successfully",
		zap.String("path", dbPath))

	return db, nil
}

// createTables creates all tables if they don't exist
func createTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			plan_type TEXT NOT NULL DEFAULT 'free',
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			original_name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			status TEXT NOT NULL,
			metadata TEXT NOT NULL,
			analytics TEXT,
			ai_report TEXT,
			linked_farmer TEXT,
			csv_content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_user_id ON datasets(user_id, created_at)`,

		// Reports are insert-only snapshots. They reference the dataset
		// without a foreign key so deleting a dataset keeps its certificates.
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			report_id TEXT UNIQUE NOT NULL,
			user_id TEXT NOT NULL,
			dataset_id TEXT NOT NULL,
			integrity_hash TEXT NOT NULL,
			document TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_user_id ON reports(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_dataset_id ON reports(dataset_id)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute SQL: %s, error: %w", table, err)
		}
	}

	return nil
}

// WithTx executes fn within a transaction, retrying when SQLite reports busy
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	var err error
	for i := 0; i < maxBusyRetries; i++ {
		err = runTx(ctx, db, fn)
		if err == nil || !isBusy(err) {
			return err
		}
		if sleepErr := sleepCtx(ctx, time.Duration(100*(i+1))*time.Millisecond); sleepErr != nil {
			return err
		}
	}
	return err
}

func runTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}

// execRetry executes a statement, retrying when SQLite reports busy
func execRetry(ctx context.Context, db execer, query string, args ...any) (sql.Result, error) {
	var (
		result sql.Result
		err    error
	)
	for i := 0; i < maxBusyRetries; i++ {
		result, err = db.ExecContext(ctx, query, args...)
		if err == nil || !isBusy(err) {
			return result, err
		}
		if sleepErr := sleepCtx(ctx, time.Duration(100*(i+1))*time.Millisecond); sleepErr != nil {
			return nil, err
		}
	}
	return nil, err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// timeLayout is fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
