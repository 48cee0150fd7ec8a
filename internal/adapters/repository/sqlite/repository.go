package sqlite

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is a fixed-width UTC layout so that lexicographic
// comparison of stored values matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000000"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		original_url TEXT NOT NULL,
		owner_id INTEGER NOT NULL,
		activated INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		expires_at TEXT,
		FOREIGN KEY(owner_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_links_key ON links(key);
	CREATE INDEX IF NOT EXISTS idx_links_owner_id ON links(owner_id);

	CREATE TABLE IF NOT EXISTS clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id INTEGER NOT NULL,
		source_ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		occurred_at TEXT NOT NULL,
		FOREIGN KEY(link_id) REFERENCES links(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id, occurred_at);
	`
	_, err := db.Exec(query)
	return err
}

// IsUniqueViolation reports whether err is a storage-level uniqueness
// failure. The pooled connections are not guaranteed to have foreign-key
// or error-code parity across the two drivers, so a message fallback
// covers the libsql path.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	// Stored values lacking zone information are interpreted as UTC.
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		// Legacy rows written by other tools.
		t, err = time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	}
	return t, err
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
