// Package dbtest opens throwaway SQLite databases carrying the same tables
// as the MySQL schema, for tests of code written against database/sql.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/football-ticketing/internal/database"
)

const sqliteSchema = `
CREATE TABLE users (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    username   TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    password   TEXT NOT NULL,
    role       TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user','admin')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE categories (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE events (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    team1_name     TEXT NOT NULL,
    team2_name     TEXT NOT NULL,
    team1_logo_url TEXT NULL,
    team2_logo_url TEXT NULL,
    description    TEXT NULL,
    date           DATETIME NOT NULL,
    location       TEXT NOT NULL,
    category_id    INTEGER NOT NULL REFERENCES categories (id) ON DELETE RESTRICT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE tribunes (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id        INTEGER NOT NULL REFERENCES events (id) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    price           REAL NOT NULL,
    available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (event_id, name)
);
CREATE TABLE orders (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    event_id     INTEGER NOT NULL REFERENCES events (id) ON DELETE CASCADE,
    tribune_id   INTEGER NOT NULL REFERENCES tribunes (id) ON DELETE CASCADE,
    quantity     INTEGER NOT NULL,
    total_price  REAL NOT NULL,
    status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','paid','cancelled')),
    order_date   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    booking_code TEXT NULL UNIQUE
);
`

// Open returns a fresh database file under t.TempDir() with the schema
// applied.  A single connection is used so that SQLite never reports
// "database is locked" when transactions from different goroutines queue up.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickets.db")
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := database.ApplySchema(context.Background(), db, sqliteSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
