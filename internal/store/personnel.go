package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// CreatePersonnel adds a person to a cohort. The store does not enforce
// name uniqueness, so duplicates are detected here before insert: a
// repeated name without a duplicate tag fails with ErrConflict telling
// the caller to supply one.
func CreatePersonnel(ctx context.Context, db *sql.DB, cohortID int64, name, tag string) (*model.Personnel, error) {
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" {
		return nil, fmt.Errorf("%w: personnel name is required", ErrInvalid)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var cohortExists int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM cohorts WHERE id = ?`, cohortID,
	).Scan(&cohortExists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: cohort %d", ErrNotFound, cohortID)
	}
	if err != nil {
		return nil, fmt.Errorf("checking cohort: %w", err)
	}

	if tag == "" {
		// Any same-named person in the cohort means the caller must
		// disambiguate with a tag.
		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM personnel WHERE cohort_id = ? AND name = ?`,
			cohortID, name,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("checking duplicate name: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: %q already exists in this cohort, supply a duplicate tag", ErrConflict, name)
		}
	} else {
		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM personnel WHERE cohort_id = ? AND name = ? AND duplicate_tag = ?`,
			cohortID, name, tag,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("checking duplicate name: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: %q (%s) already exists in this cohort", ErrConflict, name, tag)
		}
	}

	var tagValue any
	if tag != "" {
		tagValue = tag
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO personnel (cohort_id, name, duplicate_tag) VALUES (?, ?, ?)`,
		cohortID, name, tagValue,
	)
	if err != nil {
		return nil, fmt.Errorf("creating personnel: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting personnel id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing personnel: %w", err)
	}

	return GetPersonnel(ctx, db, id)
}

// GetPersonnel returns a person by ID.
func GetPersonnel(ctx context.Context, db *sql.DB, id int64) (*model.Personnel, error) {
	return scanPersonnel(db.QueryRowContext(ctx,
		`SELECT id, cohort_id, name, duplicate_tag, last_checkout_id
		 FROM personnel WHERE id = ?`, id,
	))
}

// FindPersonnel looks a person up by cohort, name and duplicate tag.
// An empty tag matches only people without one.
func FindPersonnel(ctx context.Context, db *sql.DB, cohortID int64, name, tag string) (*model.Personnel, error) {
	if tag == "" {
		return scanPersonnel(db.QueryRowContext(ctx,
			`SELECT id, cohort_id, name, duplicate_tag, last_checkout_id
			 FROM personnel WHERE cohort_id = ? AND name = ? AND duplicate_tag IS NULL`,
			cohortID, name,
		))
	}
	return scanPersonnel(db.QueryRowContext(ctx,
		`SELECT id, cohort_id, name, duplicate_tag, last_checkout_id
		 FROM personnel WHERE cohort_id = ? AND name = ? AND duplicate_tag = ?`,
		cohortID, name, tag,
	))
}

// ListPersonnel returns a cohort's members ordered by name.
func ListPersonnel(ctx context.Context, db *sql.DB, cohortID int64) ([]model.Personnel, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, cohort_id, name, duplicate_tag, last_checkout_id
		 FROM personnel WHERE cohort_id = ? ORDER BY name`, cohortID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing personnel: %w", err)
	}
	defer rows.Close()

	var people []model.Personnel
	for rows.Next() {
		var p model.Personnel
		var tag sql.NullString
		var last sql.NullInt64
		if err := rows.Scan(&p.ID, &p.CohortID, &p.Name, &tag, &last); err != nil {
			return nil, fmt.Errorf("scanning personnel: %w", err)
		}
		p.DuplicateTag = tag.String
		if last.Valid {
			p.LastCheckoutID = &last.Int64
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func scanPersonnel(row *sql.Row) (*model.Personnel, error) {
	p := &model.Personnel{}
	var tag sql.NullString
	var last sql.NullInt64
	err := row.Scan(&p.ID, &p.CohortID, &p.Name, &tag, &last)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting personnel: %w", err)
	}
	p.DuplicateTag = tag.String
	if last.Valid {
		p.LastCheckoutID = &last.Int64
	}
	return p, nil
}
