package bulk

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yunseo-dev/gearledger/internal/model"
	"github.com/yunseo-dev/gearledger/internal/store"
)

// ExportRoster renders every cohort's roster, one row per person with
// their latest assignment, as an .xlsx workbook.
func ExportRoster(ctx context.Context, db *sql.DB) (*bytes.Buffer, error) {
	cohorts, err := store.ListCohorts(ctx, db, true)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []string{"Cohort", "Name", "Type", "Serial", "Checkout Date", "Return Date", "Remark"}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}

	row := 2
	for _, cohort := range cohorts {
		roster, err := store.Roster(ctx, db, cohort.ID)
		if err != nil {
			return nil, err
		}
		for _, entry := range roster {
			name := entry.Name
			if entry.DuplicateTag != "" {
				name = fmt.Sprintf("%s (%s)", entry.Name, entry.DuplicateTag)
			}
			returnDate := ""
			if entry.ReturnDate != nil {
				returnDate = *entry.ReturnDate
			}
			values := []string{
				cohort.Name, name, entry.EquipmentType, entry.SerialNumber,
				entry.CheckoutDate, returnDate, entry.Remarks,
			}
			if err := writeRow(f, sheet, row, values); err != nil {
				return nil, err
			}
			row++
		}
	}

	return writeWorkbook(f)
}

// ExportInventory renders the full equipment ledger with current
// holders as an .xlsx workbook.
func ExportInventory(ctx context.Context, db *sql.DB) (*bytes.Buffer, error) {
	items, err := store.ListEquipment(ctx, db)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []string{"Type", "Serial", "Status", "Holder", "Cohort", "Remark"}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}

	for i, e := range items {
		values := []string{
			e.Type, e.SerialNumber, statusLabel(e.Status),
			e.HolderName, e.CohortName, e.Remarks,
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}

	return writeWorkbook(f)
}

func statusLabel(status model.Status) string {
	switch status {
	case model.StatusInStock:
		return "In stock"
	case model.StatusNeedsInspection:
		return "Needs inspection"
	case model.StatusCheckedOut:
		return "Checked out"
	case model.StatusDamaged:
		return "Damaged"
	}
	return string(status)
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("building cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("writing cell %s: %w", cell, err)
		}
	}
	return nil
}

func writeWorkbook(f *excelize.File) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf, nil
}
