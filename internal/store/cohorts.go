package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// CreateCohort creates a new cohort at the end of the sort order.
// Cohort names are unique; a duplicate fails with ErrConflict.
func CreateCohort(ctx context.Context, db *sql.DB, name string) (*model.Cohort, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: cohort name is required", ErrInvalid)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM cohorts WHERE name = ?`, name,
	).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("%w: cohort %q already exists", ErrConflict, name)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking cohort name: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO cohorts (name, sort_order)
		 VALUES (?, (SELECT IFNULL(MAX(sort_order), 0) + 1 FROM cohorts))`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating cohort: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting cohort id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cohort: %w", err)
	}

	return GetCohort(ctx, db, id)
}

// GetCohort returns a cohort by ID.
func GetCohort(ctx context.Context, db *sql.DB, id int64) (*model.Cohort, error) {
	c := &model.Cohort{}
	var color sql.NullString
	var hidden int
	err := db.QueryRowContext(ctx,
		`SELECT id, name, color, sort_order, is_hidden FROM cohorts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &color, &c.SortOrder, &hidden)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cohort: %w", err)
	}
	c.Color = color.String
	c.Hidden = hidden != 0
	return c, nil
}

// GetCohortByName returns a cohort by its unique name.
func GetCohortByName(ctx context.Context, db *sql.DB, name string) (*model.Cohort, error) {
	c := &model.Cohort{}
	var color sql.NullString
	var hidden int
	err := db.QueryRowContext(ctx,
		`SELECT id, name, color, sort_order, is_hidden FROM cohorts WHERE name = ?`, name,
	).Scan(&c.ID, &c.Name, &color, &c.SortOrder, &hidden)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cohort by name: %w", err)
	}
	c.Color = color.String
	c.Hidden = hidden != 0
	return c, nil
}

// ListCohorts returns cohorts with their personnel and open-checkout
// counts, hidden cohorts last unless excluded.
func ListCohorts(ctx context.Context, db *sql.DB, includeHidden bool) ([]model.Cohort, error) {
	query := `
		SELECT c.id, c.name, c.color, c.sort_order, c.is_hidden,
		       (SELECT COUNT(*) FROM personnel WHERE cohort_id = c.id) AS total_personnel,
		       (SELECT COUNT(ck.id)
		        FROM checkouts ck
		        JOIN personnel p ON ck.personnel_id = p.id
		        WHERE p.cohort_id = c.id AND ck.return_date IS NULL) AS checked_out_count
		FROM cohorts c`
	if !includeHidden {
		query += ` WHERE c.is_hidden = 0`
	}
	query += ` ORDER BY c.is_hidden ASC, c.sort_order ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing cohorts: %w", err)
	}
	defer rows.Close()

	var cohorts []model.Cohort
	for rows.Next() {
		var c model.Cohort
		var color sql.NullString
		var hidden int
		if err := rows.Scan(&c.ID, &c.Name, &color, &c.SortOrder, &hidden,
			&c.TotalPersonnel, &c.CheckedOutCount); err != nil {
			return nil, fmt.Errorf("scanning cohort: %w", err)
		}
		c.Color = color.String
		c.Hidden = hidden != 0
		cohorts = append(cohorts, c)
	}
	return cohorts, rows.Err()
}

// SetCohortColor updates a cohort's display color.
func SetCohortColor(ctx context.Context, db *sql.DB, id int64, color string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE cohorts SET color = ? WHERE id = ?`, color, id,
	)
	if err != nil {
		return fmt.Errorf("setting cohort color: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("setting cohort color: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: cohort %d", ErrNotFound, id)
	}
	return nil
}

// SetCohortHidden toggles a cohort's visibility without deleting its
// members or their history.
func SetCohortHidden(ctx context.Context, db *sql.DB, id int64, hidden bool) error {
	value := 0
	if hidden {
		value = 1
	}
	result, err := db.ExecContext(ctx,
		`UPDATE cohorts SET is_hidden = ? WHERE id = ?`, value, id,
	)
	if err != nil {
		return fmt.Errorf("setting cohort visibility: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("setting cohort visibility: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: cohort %d", ErrNotFound, id)
	}
	return nil
}
