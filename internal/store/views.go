package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// Read-only projections for presentation. None of these mutate state;
// errors are reported to the caller and carry no consistency risk.

// EquipmentStats returns equipment counts by status.
func EquipmentStats(ctx context.Context, db *sql.DB) (*model.EquipmentStats, error) {
	s := &model.EquipmentStats{}
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'IN_STOCK' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'CHECKED_OUT' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'NEEDS_INSPECTION' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'DAMAGED' THEN 1 ELSE 0 END), 0)
		 FROM equipment`,
	).Scan(&s.Total, &s.InStock, &s.CheckedOut, &s.NeedsInspection, &s.Damaged)
	if err != nil {
		return nil, fmt.Errorf("getting equipment stats: %w", err)
	}
	return s, nil
}

// TypeCounts returns the number of equipment rows per type, regardless
// of status.
func TypeCounts(ctx context.Context, db *sql.DB) ([]model.TypeCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM equipment GROUP BY type ORDER BY type ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("getting type counts: %w", err)
	}
	defer rows.Close()

	var counts []model.TypeCount
	for rows.Next() {
		var tc model.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning type count: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// CohortTypeCounts returns the open-checkout pivot: how many units of
// each equipment type each cohort currently has out.
func CohortTypeCounts(ctx context.Context, db *sql.DB) ([]model.CohortTypeCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.name, c.color, e.type, COUNT(e.id)
		 FROM checkouts ck
		 JOIN personnel p ON ck.personnel_id = p.id
		 JOIN cohorts c ON p.cohort_id = c.id
		 JOIN equipment e ON ck.equipment_id = e.id
		 WHERE ck.return_date IS NULL
		 GROUP BY c.id, e.type
		 ORDER BY c.sort_order ASC, e.type ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("getting cohort type counts: %w", err)
	}
	defer rows.Close()

	var counts []model.CohortTypeCount
	for rows.Next() {
		var cc model.CohortTypeCount
		var color sql.NullString
		if err := rows.Scan(&cc.CohortID, &cc.CohortName, &color, &cc.EquipmentType, &cc.Count); err != nil {
			return nil, fmt.Errorf("scanning cohort type count: %w", err)
		}
		cc.CohortColor = color.String
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// Roster returns one row per cohort member, left-joined to their latest
// checkout and its equipment, ordered by name then checkout date.
func Roster(ctx context.Context, db *sql.DB, cohortID int64) ([]model.RosterEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.name, p.duplicate_tag,
		        ck.id, ck.checkout_date, ck.return_date, ck.remarks, ck.previous_serial,
		        e.id, e.type, e.serial_number, e.status
		 FROM personnel p
		 LEFT JOIN checkouts ck ON ck.id = p.last_checkout_id
		 LEFT JOIN equipment e ON e.id = ck.equipment_id
		 WHERE p.cohort_id = ?
		 ORDER BY p.name ASC, ck.checkout_date DESC`, cohortID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting roster: %w", err)
	}
	defer rows.Close()

	var roster []model.RosterEntry
	for rows.Next() {
		var entry model.RosterEntry
		var tag, checkoutDate, returnDate, remarks, prevChain sql.NullString
		var checkoutID, equipmentID sql.NullInt64
		var equipType, serial, status sql.NullString
		if err := rows.Scan(&entry.PersonnelID, &entry.Name, &tag,
			&checkoutID, &checkoutDate, &returnDate, &remarks, &prevChain,
			&equipmentID, &equipType, &serial, &status); err != nil {
			return nil, fmt.Errorf("scanning roster entry: %w", err)
		}
		entry.DuplicateTag = tag.String
		if checkoutID.Valid {
			entry.CheckoutID = &checkoutID.Int64
			entry.CheckoutDate = checkoutDate.String
			if returnDate.Valid {
				entry.ReturnDate = &returnDate.String
			}
			entry.Remarks = remarks.String
			entry.PreviousSerials = model.SplitSerialChain(prevChain.String)
		}
		if equipmentID.Valid {
			entry.EquipmentID = &equipmentID.Int64
			entry.EquipmentType = equipType.String
			entry.SerialNumber = serial.String
			entry.Status = model.Status(status.String)
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// AvailableInventory returns equipment sitting in the warehouse,
// joined to its most recent checkout's remarks so notes survive the
// return. IN_STOCK only, or also NEEDS_INSPECTION when includePending
// is set.
func AvailableInventory(ctx context.Context, db *sql.DB, includePending bool) ([]model.Equipment, error) {
	statusFilter := `e.status = 'IN_STOCK'`
	if includePending {
		statusFilter = `e.status IN ('IN_STOCK', 'NEEDS_INSPECTION')`
	}
	query := `
		SELECT e.id, e.type, e.serial_number, e.status, last_ck.remarks
		FROM equipment e
		LEFT JOIN (
		    SELECT equipment_id, remarks
		    FROM checkouts c1
		    WHERE id = (SELECT MAX(id) FROM checkouts c2 WHERE c2.equipment_id = c1.equipment_id)
		) last_ck ON e.id = last_ck.equipment_id
		WHERE ` + statusFilter + `
		ORDER BY e.type ASC, e.id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("getting available inventory: %w", err)
	}
	defer rows.Close()

	return scanEquipmentWithRemarks(rows)
}

// ListEquipment returns the full equipment ledger with the current
// holder joined for checked-out units, ordered by status then type.
func ListEquipment(ctx context.Context, db *sql.DB) ([]model.Equipment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT e.id, e.type, e.serial_number, e.status,
		        IFNULL(MAX(p.name), ''), IFNULL(MAX(c.name), ''), MAX(c.color),
		        MAX(last_ck.remarks)
		 FROM equipment e
		 LEFT JOIN checkouts ch ON e.id = ch.equipment_id AND ch.return_date IS NULL
		 LEFT JOIN personnel p ON ch.personnel_id = p.id
		 LEFT JOIN cohorts c ON p.cohort_id = c.id
		 LEFT JOIN (
		     SELECT equipment_id, remarks
		     FROM checkouts c1
		     WHERE id = (SELECT MAX(id) FROM checkouts c2 WHERE c2.equipment_id = c1.equipment_id)
		 ) last_ck ON e.id = last_ck.equipment_id
		 GROUP BY e.id
		 ORDER BY CASE e.status
		     WHEN 'IN_STOCK' THEN 1
		     WHEN 'NEEDS_INSPECTION' THEN 2
		     WHEN 'CHECKED_OUT' THEN 3
		     ELSE 4
		 END, e.type ASC, e.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	defer rows.Close()

	var items []model.Equipment
	for rows.Next() {
		var e model.Equipment
		var cohortColor, remarks sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.SerialNumber, &e.Status,
			&e.HolderName, &e.CohortName, &cohortColor, &remarks); err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		e.CohortColor = cohortColor.String
		e.Remarks = remarks.String
		items = append(items, e)
	}
	return items, rows.Err()
}

// EquipmentTypes returns the distinct equipment types in use.
func EquipmentTypes(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT type FROM equipment ORDER BY type ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing equipment types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning equipment type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func scanEquipmentWithRemarks(rows *sql.Rows) ([]model.Equipment, error) {
	var items []model.Equipment
	for rows.Next() {
		var e model.Equipment
		var remarks sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.SerialNumber, &e.Status, &remarks); err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		e.Remarks = remarks.String
		items = append(items, e)
	}
	return items, rows.Err()
}
