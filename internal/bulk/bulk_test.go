package bulk

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/yunseo-dev/gearledger/internal/db"
	"github.com/yunseo-dev/gearledger/internal/store"
)

// buildSheet builds an in-memory .xlsx with a header and data rows.
func buildSheet(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("building cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("writing cell: %v", err)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	return buf
}

func TestParseRosterEnglishHeaders(t *testing.T) {
	buf := buildSheet(t, [][]string{
		{"Cohort", "Name", "Type", "Serial", "Date", "Remark"},
		{"Alpha", "Kim Minjun", "Radio", "R-001", "2026-01-10", "scratched"},
		{"Alpha", "Lee Seojun", "", "", "", ""},
	})

	rows, err := ParseRoster(buf)
	if err != nil {
		t.Fatalf("parsing roster: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	first := rows[0]
	if first.Cohort != "Alpha" || first.Name != "Kim Minjun" || first.Serial != "R-001" || first.Remark != "scratched" {
		t.Errorf("first row = %+v", first)
	}
}

func TestParseRosterKoreanHeaders(t *testing.T) {
	buf := buildSheet(t, [][]string{
		{"기수", "이름", "장비 종류", "시리얼 번호", "불출일", "비고"},
		{"1기", "김민준", "무전기", "R-001", "2026.01.10", ""},
	})

	rows, err := ParseRoster(buf)
	if err != nil {
		t.Fatalf("parsing roster: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Cohort != "1기" || rows[0].Name != "김민준" || rows[0].Serial != "R-001" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestParseRosterRejectsMissingHeader(t *testing.T) {
	buf := buildSheet(t, [][]string{
		{"Type", "Serial"},
		{"Radio", "R-001"},
	})
	if _, err := ParseRoster(buf); err == nil {
		t.Error("expected error for missing cohort/name columns")
	}
}

func TestImportRoster(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rows := []RosterRow{
		{Row: 2, Cohort: "Alpha", Name: "Kim Minjun", Type: "Radio", Serial: "R-001", Date: "2026-01-10"},
		{Row: 3, Cohort: "Alpha", Name: "Kim Minjun (B)", Type: "Radio", Serial: "R-002", Date: "2026-01-10"},
		{Row: 4, Cohort: "Alpha", Name: "Lee Seojun"},
		{Row: 5, Cohort: "", Name: "Park Jiho"},
		{Row: 6, Cohort: "Bravo", Name: ""},
	}

	processed, err := ImportRoster(ctx, database, rows)
	if err != nil {
		t.Fatalf("importing roster: %v", err)
	}
	if processed != 3 {
		t.Errorf("processed = %d, want 3", processed)
	}

	cohort, err := store.GetCohortByName(ctx, database, "Alpha")
	if err != nil {
		t.Fatalf("getting cohort: %v", err)
	}
	if cohort == nil {
		t.Fatal("cohort Alpha should have been created")
	}

	people, err := store.ListPersonnel(ctx, database, cohort.ID)
	if err != nil {
		t.Fatalf("listing personnel: %v", err)
	}
	if len(people) != 3 {
		t.Fatalf("personnel = %d, want 3", len(people))
	}

	// The parenthesized suffix became a duplicate tag.
	tagged, err := store.FindPersonnel(ctx, database, cohort.ID, "Kim Minjun", "B")
	if err != nil {
		t.Fatalf("finding tagged person: %v", err)
	}
	if tagged == nil {
		t.Fatal("tagged duplicate should exist")
	}
	latest, err := store.LatestFor(ctx, database, tagged.ID)
	if err != nil {
		t.Fatalf("getting latest checkout: %v", err)
	}
	if latest == nil || latest.SerialNumber != "R-002" || !latest.Open() {
		t.Errorf("tagged person's checkout = %+v, want open R-002", latest)
	}
}

func TestImportRosterIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rows := []RosterRow{
		{Row: 2, Cohort: "Alpha", Name: "Kim Minjun", Type: "Radio", Serial: "R-001", Date: "2026-01-10"},
	}

	if _, err := ImportRoster(ctx, database, rows); err != nil {
		t.Fatalf("first import: %v", err)
	}
	processed, err := ImportRoster(ctx, database, rows)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}

	// No duplicate people, no duplicate ledger rows.
	cohort, err := store.GetCohortByName(ctx, database, "Alpha")
	if err != nil {
		t.Fatalf("getting cohort: %v", err)
	}
	people, err := store.ListPersonnel(ctx, database, cohort.ID)
	if err != nil {
		t.Fatalf("listing personnel: %v", err)
	}
	if len(people) != 1 {
		t.Errorf("personnel = %d, want 1", len(people))
	}
	stats, err := store.EquipmentStats(ctx, database)
	if err != nil {
		t.Fatalf("getting stats: %v", err)
	}
	if stats.Total != 1 || stats.CheckedOut != 1 {
		t.Errorf("stats = %+v, want one checked-out unit", stats)
	}
}

func TestImportStockCounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := store.RegisterStock(ctx, database, "Radio", "R-001"); err != nil {
		t.Fatalf("registering stock: %v", err)
	}

	rows := []StockRow{
		{Row: 2, Type: "Radio", Serial: "R-001"},
		{Row: 3, Type: "Radio", Serial: "R-002"},
		{Row: 4, Type: "Headset", Serial: "H-001"},
		{Row: 5, Type: "", Serial: "X-001"},
	}

	added, skipped, err := ImportStock(ctx, database, rows)
	if err != nil {
		t.Fatalf("importing stock: %v", err)
	}
	if added != 2 || skipped != 1 {
		t.Errorf("added = %d, skipped = %d, want 2, 1", added, skipped)
	}
}

func TestExportInventoryRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := store.RegisterStock(ctx, database, "Radio", "R-001"); err != nil {
		t.Fatalf("registering stock: %v", err)
	}

	buf, err := ExportInventory(ctx, database)
	if err != nil {
		t.Fatalf("exporting inventory: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("reading exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one item", len(rows))
	}
	if rows[1][0] != "Radio" || rows[1][1] != "R-001" || rows[1][2] != "In stock" {
		t.Errorf("data row = %v", rows[1])
	}
}

func TestExportRoster(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rows := []RosterRow{
		{Row: 2, Cohort: "Alpha", Name: "Kim Minjun", Type: "Radio", Serial: "R-001", Date: "2026-01-10"},
	}
	if _, err := ImportRoster(ctx, database, rows); err != nil {
		t.Fatalf("importing roster: %v", err)
	}

	buf, err := ExportRoster(ctx, database)
	if err != nil {
		t.Fatalf("exporting roster: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("reading exported workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want header plus one entry", len(got))
	}
	if got[1][0] != "Alpha" || got[1][1] != "Kim Minjun" || got[1][3] != "R-001" {
		t.Errorf("data row = %v", got[1])
	}
}

func TestSplitNameTag(t *testing.T) {
	tests := []struct {
		full, name, tag string
	}{
		{"Kim Minjun", "Kim Minjun", ""},
		{"Kim (A)", "Kim", "A"},
		{"Kim Minjun (2)", "Kim Minjun", "2"},
		{"(A)", "(A)", ""},
	}
	for _, tt := range tests {
		name, tag := splitNameTag(tt.full)
		if name != tt.name || tag != tt.tag {
			t.Errorf("splitNameTag(%q) = %q, %q, want %q, %q", tt.full, name, tag, tt.name, tt.tag)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-01-10", "2026-01-10"},
		{"2026.01.10", "2026-01-10"},
		{"2026/1/5", "2026-01-05"},
	}
	for _, tt := range tests {
		if got := normalizeDate(tt.in); got != tt.want {
			t.Errorf("normalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Unparseable dates fall back to today.
	if got := normalizeDate("last tuesday"); got != store.Today() {
		t.Errorf("normalizeDate fallback = %q, want today", got)
	}
}
