package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Append new migrations at the end.
var migrations = []string{
	// Migration 1: databases created before the explicit latest-checkout
	// pointer existed need the column added and backfilled from the old
	// max(id)-per-person convention.
	`ALTER TABLE personnel ADD COLUMN last_checkout_id INTEGER REFERENCES checkouts(id)`,
	`UPDATE personnel SET last_checkout_id = (
	     SELECT MAX(id) FROM checkouts WHERE checkouts.personnel_id = personnel.id
	 ) WHERE last_checkout_id IS NULL`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			// ALTER TABLE ADD COLUMN is not idempotent in SQLite; a
			// duplicate column error means the migration already ran.
			if strings.Contains(strings.ToLower(err.Error()), "duplicate column name") {
				continue
			}
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
