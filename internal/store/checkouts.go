package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// Open issues equipment to a person: resolves or creates the equipment
// by serial number, inserts a new open ledger row, and advances the
// person's latest-checkout pointer, all in one transaction. Fails with
// ErrConflict if the equipment is already checked out elsewhere or the
// person still holds something.
func Open(ctx context.Context, db *sql.DB, personnelID int64, equipType, serial, date string) (*model.Checkout, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// The person must exist and must not already hold equipment.
	var lastCheckoutID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT last_checkout_id FROM personnel WHERE id = ?`, personnelID,
	).Scan(&lastCheckoutID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: personnel %d", ErrNotFound, personnelID)
	}
	if err != nil {
		return nil, fmt.Errorf("checking personnel: %w", err)
	}
	if lastCheckoutID.Valid {
		var returned sql.NullString
		err = tx.QueryRowContext(ctx,
			`SELECT return_date FROM checkouts WHERE id = ?`, lastCheckoutID.Int64,
		).Scan(&returned)
		if err != nil {
			return nil, fmt.Errorf("checking latest checkout: %w", err)
		}
		if !returned.Valid {
			return nil, fmt.Errorf("%w: personnel %d already holds equipment", ErrConflict, personnelID)
		}
	}

	equipmentID, err := resolveOrCreateEquipment(ctx, tx, equipType, serial)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO checkouts (personnel_id, equipment_id, checkout_date) VALUES (?, ?, ?)`,
		personnelID, equipmentID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting checkout: %w", err)
	}
	checkoutID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting checkout id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE personnel SET last_checkout_id = ? WHERE id = ?`, checkoutID, personnelID,
	); err != nil {
		return nil, fmt.Errorf("updating latest-checkout pointer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}

	return GetCheckout(ctx, db, checkoutID)
}

// Close returns an open checkout: sets the return date and moves the
// equipment through the post-return transition (inspection queue, or
// unchanged if damaged) in one transaction.
func Close(ctx context.Context, db *sql.DB, checkoutID int64, date string) error {
	if err := validDate(date); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	equipmentID, returned, err := checkoutState(ctx, tx, checkoutID)
	if err != nil {
		return err
	}
	if returned {
		return fmt.Errorf("%w: checkout %d is already returned", ErrConflict, checkoutID)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE checkouts SET return_date = ? WHERE id = ?`, date, checkoutID,
	); err != nil {
		return fmt.Errorf("closing checkout: %w", err)
	}

	if err := markEquipmentReturned(ctx, tx, equipmentID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing return: %w", err)
	}
	return nil
}

// Reopen undoes an erroneous return: clears the return date and
// restores the equipment to CHECKED_OUT (or leaves it DAMAGED). Fails
// with ErrConflict if the equipment was re-issued to someone else in
// the meantime, which would otherwise create two active holders.
func Reopen(ctx context.Context, db *sql.DB, checkoutID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	equipmentID, returned, err := checkoutState(ctx, tx, checkoutID)
	if err != nil {
		return err
	}
	if !returned {
		return fmt.Errorf("%w: checkout %d is not returned", ErrConflict, checkoutID)
	}

	status, err := equipmentStatus(ctx, tx, equipmentID)
	if err != nil {
		return err
	}
	if status == model.StatusCheckedOut {
		return fmt.Errorf("%w: equipment was re-issued to someone else", ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE checkouts SET return_date = NULL WHERE id = ?`, checkoutID,
	); err != nil {
		return fmt.Errorf("reopening checkout: %w", err)
	}

	if next := model.StatusAfterReopen(status); next != status {
		if _, err := tx.ExecContext(ctx,
			`UPDATE equipment SET status = ? WHERE id = ?`, next, equipmentID,
		); err != nil {
			return fmt.Errorf("restoring equipment status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing undo-return: %w", err)
	}
	return nil
}

// Replace swaps the equipment bound to an ongoing checkout without
// closing the assignment: the new serial is resolved or created, the
// old equipment goes through the post-return transition, and the old
// serial is appended to the assignment's provenance chain.
func Replace(ctx context.Context, db *sql.DB, checkoutID int64, newType, newSerial string) (*model.Checkout, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		oldEquipmentID int64
		oldSerial      string
		returnDate     sql.NullString
		prevChain      sql.NullString
	)
	err = tx.QueryRowContext(ctx,
		`SELECT ck.equipment_id, e.serial_number, ck.return_date, ck.previous_serial
		 FROM checkouts ck
		 JOIN equipment e ON e.id = ck.equipment_id
		 WHERE ck.id = ?`, checkoutID,
	).Scan(&oldEquipmentID, &oldSerial, &returnDate, &prevChain)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: checkout %d", ErrNotFound, checkoutID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting checkout: %w", err)
	}
	if returnDate.Valid {
		return nil, fmt.Errorf("%w: checkout %d is already returned", ErrConflict, checkoutID)
	}

	newEquipmentID, err := resolveOrCreateEquipment(ctx, tx, newType, newSerial)
	if err != nil {
		return nil, err
	}

	if err := markEquipmentReturned(ctx, tx, oldEquipmentID); err != nil {
		return nil, err
	}

	chain := append(model.SplitSerialChain(prevChain.String), oldSerial)
	if _, err := tx.ExecContext(ctx,
		`UPDATE checkouts SET equipment_id = ?, previous_serial = ? WHERE id = ?`,
		newEquipmentID, model.JoinSerialChain(chain), checkoutID,
	); err != nil {
		return nil, fmt.Errorf("re-pointing checkout: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing replace: %w", err)
	}

	return GetCheckout(ctx, db, checkoutID)
}

// SetRemarks updates the free-text remarks on a checkout row.
// Empty remarks clear the column.
func SetRemarks(ctx context.Context, db *sql.DB, checkoutID int64, remarks string) error {
	var value any
	if r := strings.TrimSpace(remarks); r != "" {
		value = r
	}
	result, err := db.ExecContext(ctx,
		`UPDATE checkouts SET remarks = ? WHERE id = ?`, value, checkoutID,
	)
	if err != nil {
		return fmt.Errorf("setting remarks: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("setting remarks: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: checkout %d", ErrNotFound, checkoutID)
	}
	return nil
}

// BatchReturn closes the latest checkout of every listed person whose
// equipment is actively checked out. Rows are independent: ineligible
// people (nothing out, already returned, or holding damaged equipment)
// are skipped silently and one failure does not roll back the rest.
// Returns the number of ledger rows actually closed.
func BatchReturn(ctx context.Context, db *sql.DB, personnelIDs []int64, date string) (int, error) {
	if err := validDate(date); err != nil {
		return 0, err
	}

	closed := 0
	for _, personnelID := range personnelIDs {
		ck, err := LatestFor(ctx, db, personnelID)
		if err != nil {
			return closed, err
		}
		if ck == nil || !ck.Open() || ck.Status != model.StatusCheckedOut {
			continue
		}

		if err := Close(ctx, db, ck.ID, date); err != nil {
			if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
				continue
			}
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// EnsureOpenCheckout records an assignment observed in an imported
// sheet. Unlike Open it is lenient: the equipment is forced to
// CHECKED_OUT whatever its prior state, and a row already linking the
// person to the equipment makes this a no-op, so re-importing the same
// sheet cannot duplicate ledger rows. Returns whether a row was created.
func EnsureOpenCheckout(ctx context.Context, db *sql.DB, personnelID int64, equipType, serial, date, remarks string) (bool, error) {
	equipType = strings.TrimSpace(equipType)
	serial = strings.TrimSpace(serial)
	if equipType == "" || serial == "" {
		return false, fmt.Errorf("%w: equipment type and serial number are required", ErrInvalid)
	}
	if err := validDate(date); err != nil {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var equipmentID int64
	var status model.Status
	err = tx.QueryRowContext(ctx,
		`SELECT id, status FROM equipment WHERE serial_number = ?`, serial,
	).Scan(&equipmentID, &status)
	switch {
	case err == sql.ErrNoRows:
		result, err := tx.ExecContext(ctx,
			`INSERT INTO equipment (type, serial_number, status) VALUES (?, ?, ?)`,
			equipType, serial, model.StatusCheckedOut,
		)
		if err != nil {
			return false, fmt.Errorf("creating equipment: %w", err)
		}
		if equipmentID, err = result.LastInsertId(); err != nil {
			return false, fmt.Errorf("getting equipment id: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("resolving equipment: %w", err)
	case status != model.StatusCheckedOut:
		if _, err := tx.ExecContext(ctx,
			`UPDATE equipment SET status = ?, type = ? WHERE id = ?`,
			model.StatusCheckedOut, equipType, equipmentID,
		); err != nil {
			return false, fmt.Errorf("resolving equipment: %w", err)
		}
	}

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM checkouts
		 WHERE personnel_id = ? AND equipment_id = ? AND return_date IS NULL`,
		personnelID, equipmentID,
	).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("checking existing checkout: %w", err)
	}

	var remarksValue any
	if r := strings.TrimSpace(remarks); r != "" {
		remarksValue = r
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO checkouts (personnel_id, equipment_id, checkout_date, remarks) VALUES (?, ?, ?, ?)`,
		personnelID, equipmentID, date, remarksValue,
	)
	if err != nil {
		return false, fmt.Errorf("inserting checkout: %w", err)
	}
	checkoutID, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("getting checkout id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE personnel SET last_checkout_id = ? WHERE id = ?`, checkoutID, personnelID,
	); err != nil {
		return false, fmt.Errorf("updating latest-checkout pointer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing imported checkout: %w", err)
	}
	return true, nil
}

// LatestFor returns the person's most recent checkout row (open or
// returned) via the latest-checkout pointer, or nil if they never
// checked anything out.
func LatestFor(ctx context.Context, db *sql.DB, personnelID int64) (*model.Checkout, error) {
	ck, err := scanCheckout(db.QueryRowContext(ctx,
		checkoutSelect+` JOIN personnel p ON p.last_checkout_id = ck.id WHERE p.id = ?`,
		personnelID,
	))
	if err != nil {
		return nil, fmt.Errorf("getting latest checkout: %w", err)
	}
	return ck, nil
}

// GetCheckout returns a checkout row by ID with its equipment joined.
func GetCheckout(ctx context.Context, db *sql.DB, id int64) (*model.Checkout, error) {
	ck, err := scanCheckout(db.QueryRowContext(ctx,
		checkoutSelect+` WHERE ck.id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting checkout: %w", err)
	}
	return ck, nil
}

const checkoutSelect = `
	SELECT ck.id, ck.personnel_id, ck.equipment_id, ck.checkout_date,
	       ck.return_date, ck.remarks, ck.previous_serial,
	       e.type, e.serial_number, e.status
	FROM checkouts ck
	JOIN equipment e ON e.id = ck.equipment_id`

func scanCheckout(row *sql.Row) (*model.Checkout, error) {
	ck := &model.Checkout{}
	var returnDate, remarks, prevChain sql.NullString
	err := row.Scan(&ck.ID, &ck.PersonnelID, &ck.EquipmentID, &ck.CheckoutDate,
		&returnDate, &remarks, &prevChain,
		&ck.EquipmentType, &ck.SerialNumber, &ck.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if returnDate.Valid {
		ck.ReturnDate = &returnDate.String
	}
	ck.Remarks = remarks.String
	ck.PreviousSerials = model.SplitSerialChain(prevChain.String)
	return ck, nil
}

// checkoutState reads a checkout's equipment and whether it is returned.
func checkoutState(ctx context.Context, q querier, checkoutID int64) (equipmentID int64, returned bool, err error) {
	var returnDate sql.NullString
	err = q.QueryRowContext(ctx,
		`SELECT equipment_id, return_date FROM checkouts WHERE id = ?`, checkoutID,
	).Scan(&equipmentID, &returnDate)
	if err == sql.ErrNoRows {
		return 0, false, fmt.Errorf("%w: checkout %d", ErrNotFound, checkoutID)
	}
	if err != nil {
		return 0, false, fmt.Errorf("getting checkout: %w", err)
	}
	return equipmentID, returnDate.Valid, nil
}
