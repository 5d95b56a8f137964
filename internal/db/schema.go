package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Equipment status is one of IN_STOCK, NEEDS_INSPECTION, CHECKED_OUT or
// DAMAGED; only the registry/ledger operations in internal/store may
// write it. personnel.last_checkout_id always points at the person's
// most recent checkout row, open or returned.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS cohorts (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    color      TEXT,
    sort_order INTEGER NOT NULL DEFAULT 0,
    is_hidden  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS personnel (
    id               INTEGER PRIMARY KEY,
    cohort_id        INTEGER NOT NULL REFERENCES cohorts(id),
    name             TEXT NOT NULL,
    duplicate_tag    TEXT,
    last_checkout_id INTEGER REFERENCES checkouts(id)
);

CREATE TABLE IF NOT EXISTS equipment (
    id            INTEGER PRIMARY KEY,
    type          TEXT NOT NULL,
    serial_number TEXT NOT NULL UNIQUE,
    status        TEXT NOT NULL DEFAULT 'IN_STOCK'
        CHECK (status IN ('IN_STOCK', 'NEEDS_INSPECTION', 'CHECKED_OUT', 'DAMAGED'))
);

CREATE TABLE IF NOT EXISTS checkouts (
    id              INTEGER PRIMARY KEY,
    personnel_id    INTEGER NOT NULL REFERENCES personnel(id),
    equipment_id    INTEGER NOT NULL REFERENCES equipment(id),
    checkout_date   TEXT NOT NULL,
    return_date     TEXT,
    remarks         TEXT,
    previous_serial TEXT
);

CREATE INDEX IF NOT EXISTS idx_checkouts_personnel ON checkouts(personnel_id);
CREATE INDEX IF NOT EXISTS idx_checkouts_equipment ON checkouts(equipment_id);

CREATE TABLE IF NOT EXISTS damage_reports (
    id           INTEGER PRIMARY KEY,
    equipment_id INTEGER NOT NULL REFERENCES equipment(id),
    report_date  TEXT NOT NULL,
    description  TEXT NOT NULL,
    image_path   TEXT
);

CREATE TABLE IF NOT EXISTS damage_images (
    id         INTEGER PRIMARY KEY,
    report_id  INTEGER NOT NULL REFERENCES damage_reports(id),
    image      BLOB NOT NULL,
    image_mime TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment_colors (
    type  TEXT PRIMARY KEY,
    color TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
