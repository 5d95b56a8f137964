package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// SetTypeColor upserts the display color for an equipment type.
func SetTypeColor(ctx context.Context, db *sql.DB, equipType, color string) error {
	if equipType == "" || color == "" {
		return fmt.Errorf("%w: equipment type and color are required", ErrInvalid)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO equipment_colors (type, color) VALUES (?, ?)
		 ON CONFLICT (type) DO UPDATE SET color = excluded.color`,
		equipType, color,
	)
	if err != nil {
		return fmt.Errorf("setting type color: %w", err)
	}
	return nil
}

// ListTypeColors returns all equipment type color mappings.
func ListTypeColors(ctx context.Context, db *sql.DB) ([]model.TypeColor, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT type, color FROM equipment_colors ORDER BY type ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing type colors: %w", err)
	}
	defer rows.Close()

	var colors []model.TypeColor
	for rows.Next() {
		var tc model.TypeColor
		if err := rows.Scan(&tc.Type, &tc.Color); err != nil {
			return nil, fmt.Errorf("scanning type color: %w", err)
		}
		colors = append(colors, tc)
	}
	return colors, rows.Err()
}
