package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	// sqlx does not know modernc's driver name; queries are written with ? and rebound per driver.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the database for the given driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection: an in-memory database is per-connection, and a file database
		// would otherwise hit SQLITE_BUSY under concurrent writers.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxLifetime(2 * time.Hour)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return conn, nil
}

// Instants are stored as fixed-width UTC text and calendar days as YYYY-MM-DD so the
// same statements run on Postgres and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    email_blind_index TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    display_name TEXT,
    xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
    last_reset_date TEXT,
    timezone TEXT NOT NULL DEFAULT 'UTC',
    created_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS habits (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    icon TEXT NOT NULL,
    color TEXT NOT NULL,
    category TEXT NOT NULL,
    streak INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    last_completed_date TEXT,
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS habits_user_idx ON habits (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS todos (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    priority TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'todo',
    due_date TEXT,
    completed_at TEXT,
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS todos_user_idx ON todos (user_id, created_at)`,
	// habit_id deliberately has no foreign key: history outlives the habit.
	`CREATE TABLE IF NOT EXISTS habit_completions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    habit_id TEXT NOT NULL,
    habit_name TEXT NOT NULL,
    category TEXT NOT NULL,
    completed_at TEXT NOT NULL,
    hour INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
    date TEXT NOT NULL,
    note TEXT
)`,
	`CREATE INDEX IF NOT EXISTS habit_completions_user_date_idx ON habit_completions (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS habit_notes (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    habit_id TEXT NOT NULL,
    habit_name TEXT NOT NULL,
    note TEXT NOT NULL,
    created_at TEXT NOT NULL,
    date TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS habit_notes_user_idx ON habit_notes (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    total_habits INTEGER NOT NULL,
    completed_habits INTEGER NOT NULL,
    completion_rate INTEGER NOT NULL CHECK (completion_rate BETWEEN 0 AND 100),
    recorded_at TEXT NOT NULL,
    PRIMARY KEY (user_id, date)
)`,
}

// columns added after the first release; applied only when missing.
var additions = []struct {
	table, column, ddl string
}{
	{"users", "daily_goal", "ALTER TABLE users ADD COLUMN daily_goal INTEGER"},
	{"users", "monthly_goal", "ALTER TABLE users ADD COLUMN monthly_goal INTEGER"},
	{"users", "is_admin", "ALTER TABLE users ADD COLUMN is_admin BOOLEAN NOT NULL DEFAULT FALSE"},
}

func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	for _, a := range additions {
		exists, err := columnExists(ctx, db, a.table, a.column)
		if err != nil {
			return fmt.Errorf("inspect %s.%s: %w", a.table, a.column, err)
		}
		if exists {
			continue
		}
		if _, err := db.ExecContext(ctx, a.ddl); err != nil {
			return fmt.Errorf("add %s.%s: %w", a.table, a.column, err)
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sqlx.DB, table, column string) (bool, error) {
	var n int
	var err error
	if db.DriverName() == DriverSQLite {
		err = db.GetContext(ctx, &n, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column)
	} else {
		err = db.GetContext(ctx, &n, db.Rebind(`SELECT COUNT(*) FROM information_schema.columns WHERE table_name = ? AND column_name = ?`), table, column)
	}
	return n > 0, err
}
