package store

import (
	"context"
	"database/sql"
	"fmt"
)

// FactoryReset wipes all ledger data in one transaction: damage photos
// and reports, checkouts, personnel, equipment, cohorts and color
// mappings, children before parents. User accounts and settings
// survive. Irreversible; confirmation is the caller's problem.
func FactoryReset(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear the checkout pointers first; personnel and checkouts
	// reference each other.
	statements := []string{
		`UPDATE personnel SET last_checkout_id = NULL`,
		`DELETE FROM damage_images`,
		`DELETE FROM damage_reports`,
		`DELETE FROM checkouts`,
		`DELETE FROM personnel`,
		`DELETE FROM equipment`,
		`DELETE FROM cohorts`,
		`DELETE FROM equipment_colors`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wiping data: %w", err)
		}
	}

	// Best effort: reset auto-increment counters. The table only
	// exists once an AUTOINCREMENT table has been written to.
	_, _ = tx.ExecContext(ctx,
		`DELETE FROM sqlite_sequence WHERE name IN
		 ('cohorts', 'personnel', 'equipment', 'checkouts', 'damage_reports', 'damage_images')`,
	)

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}
