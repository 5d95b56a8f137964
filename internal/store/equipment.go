package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// ResolveOrCreate finds or creates equipment by serial number and
// issues it, leaving it CHECKED_OUT. Serial number is the durable
// identity: an existing serial has its type overwritten to the one
// supplied. Fails with ErrConflict if the serial is already checked
// out elsewhere.
func ResolveOrCreate(ctx context.Context, db *sql.DB, equipType, serial string) (*model.Equipment, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := resolveOrCreateEquipment(ctx, tx, equipType, serial)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing equipment resolve: %w", err)
	}

	return GetEquipment(ctx, db, id)
}

// resolveOrCreateEquipment is the transactional body of ResolveOrCreate,
// shared with the ledger's open and replace operations.
func resolveOrCreateEquipment(ctx context.Context, q querier, equipType, serial string) (int64, error) {
	equipType = strings.TrimSpace(equipType)
	serial = strings.TrimSpace(serial)
	if equipType == "" || serial == "" {
		return 0, fmt.Errorf("%w: equipment type and serial number are required", ErrInvalid)
	}

	// Conditional update: only succeeds when the serial exists and is
	// not already in someone's hands.
	result, err := q.ExecContext(ctx,
		`UPDATE equipment SET status = ?, type = ? WHERE serial_number = ? AND status != ?`,
		model.StatusCheckedOut, equipType, serial, model.StatusCheckedOut,
	)
	if err != nil {
		return 0, fmt.Errorf("resolving equipment: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return 0, fmt.Errorf("resolving equipment: %w", err)
	} else if n > 0 {
		var id int64
		if err := q.QueryRowContext(ctx,
			`SELECT id FROM equipment WHERE serial_number = ?`, serial,
		).Scan(&id); err != nil {
			return 0, fmt.Errorf("resolving equipment: %w", err)
		}
		return id, nil
	}

	// No row updated: the serial is either unknown or checked out.
	var id int64
	err = q.QueryRowContext(ctx,
		`SELECT id FROM equipment WHERE serial_number = ?`, serial,
	).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		result, err := q.ExecContext(ctx,
			`INSERT INTO equipment (type, serial_number, status) VALUES (?, ?, ?)`,
			equipType, serial, model.StatusCheckedOut,
		)
		if err != nil {
			return 0, fmt.Errorf("creating equipment: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("getting equipment id: %w", err)
		}
		return id, nil
	case err != nil:
		return 0, fmt.Errorf("resolving equipment: %w", err)
	default:
		return 0, fmt.Errorf("%w: equipment %s is already checked out", ErrConflict, serial)
	}
}

// equipmentStatus reads the current status of one equipment row.
func equipmentStatus(ctx context.Context, q querier, id int64) (model.Status, error) {
	var status model.Status
	err := q.QueryRowContext(ctx,
		`SELECT status FROM equipment WHERE id = ?`, id,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: equipment %d", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("getting equipment status: %w", err)
	}
	return status, nil
}

// markEquipmentReturned moves equipment into the post-return state via
// the precedence rule (damage dominates).
func markEquipmentReturned(ctx context.Context, q querier, id int64) error {
	status, err := equipmentStatus(ctx, q, id)
	if err != nil {
		return err
	}

	next := model.StatusAfterReturn(status)
	if next == status {
		return nil
	}
	if _, err := q.ExecContext(ctx,
		`UPDATE equipment SET status = ? WHERE id = ?`, next, id,
	); err != nil {
		return fmt.Errorf("marking equipment returned: %w", err)
	}
	return nil
}

// markEquipmentDamaged forces equipment into DAMAGED from any prior
// state. Idempotent if already damaged.
func markEquipmentDamaged(ctx context.Context, q querier, id int64) error {
	if _, err := equipmentStatus(ctx, q, id); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx,
		`UPDATE equipment SET status = ? WHERE id = ?`, model.StatusDamaged, id,
	); err != nil {
		return fmt.Errorf("marking equipment damaged: %w", err)
	}
	return nil
}

// MarkReturned sets equipment to NEEDS_INSPECTION unless it is DAMAGED,
// in which case the status is left unchanged.
func MarkReturned(ctx context.Context, db *sql.DB, id int64) error {
	return markEquipmentReturned(ctx, db, id)
}

// MarkInspected clears the inspection gate, NEEDS_INSPECTION -> IN_STOCK.
// Fails with ErrConflict for equipment in any other state.
func MarkInspected(ctx context.Context, db *sql.DB, id int64) error {
	status, err := equipmentStatus(ctx, db, id)
	if err != nil {
		return err
	}
	if status != model.StatusNeedsInspection {
		return fmt.Errorf("%w: equipment is not awaiting inspection (status %s)", ErrConflict, status)
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE equipment SET status = ? WHERE id = ? AND status = ?`,
		model.StatusInStock, id, model.StatusNeedsInspection,
	); err != nil {
		return fmt.Errorf("marking equipment inspected: %w", err)
	}
	return nil
}

// MarkDamaged forces equipment into DAMAGED from any prior state.
func MarkDamaged(ctx context.Context, db *sql.DB, id int64) error {
	return markEquipmentDamaged(ctx, db, id)
}

// GetEquipment returns an equipment row by ID.
func GetEquipment(ctx context.Context, db *sql.DB, id int64) (*model.Equipment, error) {
	e := &model.Equipment{}
	err := db.QueryRowContext(ctx,
		`SELECT id, type, serial_number, status FROM equipment WHERE id = ?`, id,
	).Scan(&e.ID, &e.Type, &e.SerialNumber, &e.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment: %w", err)
	}
	return e, nil
}

// GetEquipmentBySerial returns an equipment row by serial number.
func GetEquipmentBySerial(ctx context.Context, db *sql.DB, serial string) (*model.Equipment, error) {
	e := &model.Equipment{}
	err := db.QueryRowContext(ctx,
		`SELECT id, type, serial_number, status FROM equipment WHERE serial_number = ?`, serial,
	).Scan(&e.ID, &e.Type, &e.SerialNumber, &e.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment by serial: %w", err)
	}
	return e, nil
}

// RegisterStock adds equipment directly to the warehouse as IN_STOCK.
// Used by the stock-register importer. Returns false without touching
// the row if the serial already exists.
func RegisterStock(ctx context.Context, db *sql.DB, equipType, serial string) (bool, error) {
	equipType = strings.TrimSpace(equipType)
	serial = strings.TrimSpace(serial)
	if equipType == "" || serial == "" {
		return false, fmt.Errorf("%w: equipment type and serial number are required", ErrInvalid)
	}

	result, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO equipment (type, serial_number, status) VALUES (?, ?, ?)`,
		equipType, serial, model.StatusInStock,
	)
	if err != nil {
		return false, fmt.Errorf("registering stock: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("registering stock: %w", err)
	}
	return n > 0, nil
}
