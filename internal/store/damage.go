package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// Report files a damage incident and forces the equipment into DAMAGED,
// in one transaction. Description is required. Reporting an
// already-damaged item is allowed: incidents stack as history.
func Report(ctx context.Context, db *sql.DB, equipmentID int64, date, description string) (*model.DamageReport, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: damage description is required", ErrInvalid)
	}
	if err := validDate(date); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := markEquipmentDamaged(ctx, tx, equipmentID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO damage_reports (equipment_id, report_date, description) VALUES (?, ?, ?)`,
		equipmentID, date, description,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting damage report: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting damage report id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing damage report: %w", err)
	}

	return GetReport(ctx, db, id)
}

// GetReport returns a damage report by ID with its equipment joined.
func GetReport(ctx context.Context, db *sql.DB, id int64) (*model.DamageReport, error) {
	r := &model.DamageReport{}
	var imagePath sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT d.id, d.equipment_id, d.report_date, d.description, d.image_path,
		        e.type, e.serial_number
		 FROM damage_reports d
		 JOIN equipment e ON e.id = d.equipment_id
		 WHERE d.id = ?`, id,
	).Scan(&r.ID, &r.EquipmentID, &r.ReportDate, &r.Description, &imagePath,
		&r.EquipmentType, &r.SerialNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting damage report: %w", err)
	}
	r.ImageIDs = decodeImageIDs(imagePath.String)
	return r, nil
}

// ListReports returns all damage reports, newest first, joined with
// their equipment. This is the damaged-items projection: damaged
// equipment paired with its incident history.
func ListReports(ctx context.Context, db *sql.DB) ([]model.DamageReport, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT d.id, d.equipment_id, d.report_date, d.description, d.image_path,
		        e.type, e.serial_number
		 FROM damage_reports d
		 JOIN equipment e ON e.id = d.equipment_id
		 ORDER BY d.report_date DESC, d.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing damage reports: %w", err)
	}
	defer rows.Close()

	var reports []model.DamageReport
	for rows.Next() {
		var r model.DamageReport
		var imagePath sql.NullString
		if err := rows.Scan(&r.ID, &r.EquipmentID, &r.ReportDate, &r.Description, &imagePath,
			&r.EquipmentType, &r.SerialNumber); err != nil {
			return nil, fmt.Errorf("scanning damage report: %w", err)
		}
		r.ImageIDs = decodeImageIDs(imagePath.String)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// AttachImage stores a processed photo for a report and records it in
// the report's attachment list, in one transaction. At most
// model.MaxDamageImages photos per report.
func AttachImage(ctx context.Context, db *sql.DB, reportID int64, image []byte, mime string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids, err := reportImageIDs(ctx, tx, reportID)
	if err != nil {
		return 0, err
	}
	if len(ids) >= model.MaxDamageImages {
		return 0, fmt.Errorf("%w: at most %d photos per report", ErrInvalid, model.MaxDamageImages)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO damage_images (report_id, image, image_mime) VALUES (?, ?, ?)`,
		reportID, image, mime,
	)
	if err != nil {
		return 0, fmt.Errorf("storing damage photo: %w", err)
	}
	imageID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting damage photo id: %w", err)
	}

	if err := writeImageIDs(ctx, tx, reportID, append(ids, imageID)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing damage photo: %w", err)
	}
	return imageID, nil
}

// RemoveImage deletes an attached photo and drops it from the report's
// attachment list.
func RemoveImage(ctx context.Context, db *sql.DB, reportID, imageID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids, err := reportImageIDs(ctx, tx, reportID)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM damage_images WHERE id = ? AND report_id = ?`, imageID, reportID,
	)
	if err != nil {
		return fmt.Errorf("deleting damage photo: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("deleting damage photo: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: photo %d on report %d", ErrNotFound, imageID, reportID)
	}

	remaining := ids[:0]
	for _, id := range ids {
		if id != imageID {
			remaining = append(remaining, id)
		}
	}
	if err := writeImageIDs(ctx, tx, reportID, remaining); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing photo removal: %w", err)
	}
	return nil
}

// GetImage returns a stored damage photo and its MIME type.
func GetImage(ctx context.Context, db *sql.DB, imageID int64) ([]byte, string, error) {
	var image []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM damage_images WHERE id = ?`, imageID,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting damage photo: %w", err)
	}
	return image, mime, nil
}

func reportImageIDs(ctx context.Context, q querier, reportID int64) ([]int64, error) {
	var imagePath sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT image_path FROM damage_reports WHERE id = ?`, reportID,
	).Scan(&imagePath)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: damage report %d", ErrNotFound, reportID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting damage report: %w", err)
	}
	return decodeImageIDs(imagePath.String), nil
}

func writeImageIDs(ctx context.Context, q querier, reportID int64, ids []int64) error {
	var value any
	if len(ids) > 0 {
		encoded, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("encoding photo list: %w", err)
		}
		value = string(encoded)
	}
	if _, err := q.ExecContext(ctx,
		`UPDATE damage_reports SET image_path = ? WHERE id = ?`, value, reportID,
	); err != nil {
		return fmt.Errorf("updating photo list: %w", err)
	}
	return nil
}

func decodeImageIDs(serialized string) []int64 {
	if serialized == "" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(serialized), &ids); err != nil {
		return nil
	}
	return ids
}
