// Package bulk parses spreadsheet uploads and replays them into the
// store, and renders store projections back out as spreadsheets.
package bulk

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yunseo-dev/gearledger/internal/store"
)

// RosterRow is one parsed line of a roster sheet.
type RosterRow struct {
	Row    int
	Cohort string
	Name   string
	Type   string
	Serial string
	Date   string
	Remark string
}

// StockRow is one parsed line of a stock-register sheet.
type StockRow struct {
	Row    int
	Type   string
	Serial string
}

// Header synonyms, matched case-insensitively as substrings so sheets
// exported from different tools (and in Korean) all parse.
var headerSynonyms = map[string][]string{
	"cohort": {"cohort", "group", "기수", "소속"},
	"name":   {"name", "이름", "성명"},
	"type":   {"type", "equipment", "장비", "종류", "품목"},
	"serial": {"serial", "s/n", "시리얼"},
	"date":   {"date", "불출", "대여"},
	"remark": {"remark", "note", "비고", "특이"},
}

// nameTag splits a trailing parenthesized duplicate tag off a name,
// "Kim (A)" -> "Kim", "A".
var nameTag = regexp.MustCompile(`^(.*?)\s*\((.+)\)$`)

// ParseRoster reads a roster sheet. The first sheet is used; the first
// row must be a header containing at least cohort and name columns.
func ParseRoster(r io.Reader) ([]RosterRow, error) {
	sheet, err := readSheet(r)
	if err != nil {
		return nil, err
	}

	cols := headerIndex(sheet[0])
	if cols["cohort"] < 0 || cols["name"] < 0 {
		return nil, fmt.Errorf("header row must contain cohort and name columns")
	}

	var rows []RosterRow
	for i := 1; i < len(sheet); i++ {
		rows = append(rows, RosterRow{
			Row:    i + 1,
			Cohort: cellAt(sheet[i], cols["cohort"]),
			Name:   cellAt(sheet[i], cols["name"]),
			Type:   cellAt(sheet[i], cols["type"]),
			Serial: cellAt(sheet[i], cols["serial"]),
			Date:   cellAt(sheet[i], cols["date"]),
			Remark: cellAt(sheet[i], cols["remark"]),
		})
	}
	return rows, nil
}

// ParseStock reads a stock-register sheet of type and serial columns.
func ParseStock(r io.Reader) ([]StockRow, error) {
	sheet, err := readSheet(r)
	if err != nil {
		return nil, err
	}

	cols := headerIndex(sheet[0])
	if cols["type"] < 0 || cols["serial"] < 0 {
		return nil, fmt.Errorf("header row must contain type and serial columns")
	}

	var rows []StockRow
	for i := 1; i < len(sheet); i++ {
		rows = append(rows, StockRow{
			Row:    i + 1,
			Type:   cellAt(sheet[i], cols["type"]),
			Serial: cellAt(sheet[i], cols["serial"]),
		})
	}
	return rows, nil
}

// ImportRoster replays roster rows into the store: cohorts and
// personnel are found or created, and rows carrying a type+serial pair
// get an open ledger row unless one already links that person to that
// equipment. Rows missing a cohort or name are skipped silently.
// Returns the number of rows processed.
func ImportRoster(ctx context.Context, db *sql.DB, rows []RosterRow) (int, error) {
	processed := 0
	for _, row := range rows {
		cohortName := strings.TrimSpace(row.Cohort)
		fullName := strings.TrimSpace(row.Name)
		if cohortName == "" || fullName == "" {
			continue
		}

		cohort, err := store.GetCohortByName(ctx, db, cohortName)
		if err != nil {
			return processed, err
		}
		if cohort == nil {
			if cohort, err = store.CreateCohort(ctx, db, cohortName); err != nil {
				return processed, fmt.Errorf("row %d: %w", row.Row, err)
			}
		}

		name, tag := splitNameTag(fullName)
		person, err := store.FindPersonnel(ctx, db, cohort.ID, name, tag)
		if err != nil {
			return processed, err
		}
		if person == nil {
			if person, err = store.CreatePersonnel(ctx, db, cohort.ID, name, tag); err != nil {
				return processed, fmt.Errorf("row %d: %w", row.Row, err)
			}
		}

		if equipType, serial := strings.TrimSpace(row.Type), strings.TrimSpace(row.Serial); equipType != "" && serial != "" {
			date := normalizeDate(row.Date)
			if _, err := store.EnsureOpenCheckout(ctx, db, person.ID, equipType, serial, date, row.Remark); err != nil {
				return processed, fmt.Errorf("row %d: %w", row.Row, err)
			}
		}

		processed++
	}
	return processed, nil
}

// ImportStock registers stock rows as IN_STOCK equipment. Existing
// serials are left untouched and counted as skipped.
func ImportStock(ctx context.Context, db *sql.DB, rows []StockRow) (added, skipped int, err error) {
	for _, row := range rows {
		equipType := strings.TrimSpace(row.Type)
		serial := strings.TrimSpace(row.Serial)
		if equipType == "" || serial == "" {
			continue
		}

		created, err := store.RegisterStock(ctx, db, equipType, serial)
		if err != nil {
			return added, skipped, fmt.Errorf("row %d: %w", row.Row, err)
		}
		if created {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped, nil
}

func readSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet has no data rows")
	}
	return rows, nil
}

// headerIndex maps each known column to its index in the header row,
// or -1 when absent.
func headerIndex(header []string) map[string]int {
	cols := map[string]int{}
	for key := range headerSynonyms {
		cols[key] = -1
	}
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(cell))
		if cell == "" {
			continue
		}
		for key, synonyms := range headerSynonyms {
			if cols[key] >= 0 {
				continue
			}
			for _, syn := range synonyms {
				if strings.Contains(cell, syn) {
					cols[key] = i
					break
				}
			}
		}
	}
	return cols
}

func splitNameTag(full string) (name, tag string) {
	if m := nameTag.FindStringSubmatch(full); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return full, ""
}

// normalizeDate accepts ISO and dotted dates; anything else falls back
// to today so an imported assignment always has a checkout date.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ".", "-")
	raw = strings.ReplaceAll(raw, "/", "-")
	if parts := strings.Split(raw, "-"); len(parts) == 3 {
		if len(parts[1]) == 1 {
			parts[1] = "0" + parts[1]
		}
		if len(parts[2]) == 1 {
			parts[2] = "0" + parts[2]
		}
		raw = strings.Join(parts, "-")
	}
	if store.ValidDate(raw) {
		return raw
	}
	return store.Today()
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
