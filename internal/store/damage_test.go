package store

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/yunseo-dev/gearledger/internal/db"
	"github.com/yunseo-dev/gearledger/internal/model"
)

func TestReportForcesDamaged(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	r, err := Report(ctx, database, ck.EquipmentID, "2026-01-12", "cracked casing")
	if err != nil {
		t.Fatalf("reporting damage: %v", err)
	}
	if r.Description != "cracked casing" || r.ReportDate != "2026-01-12" {
		t.Errorf("report = %+v", r)
	}
	if r.SerialNumber != "R-001" {
		t.Errorf("joined serial = %q, want R-001", r.SerialNumber)
	}
	if status := equipmentStatusOf(t, database, ck.EquipmentID); status != model.StatusDamaged {
		t.Errorf("status = %s, want %s", status, model.StatusDamaged)
	}

	// The ledger row is untouched: the person still holds the unit.
	got, err := GetCheckout(ctx, database, ck.ID)
	if err != nil {
		t.Fatalf("getting checkout: %v", err)
	}
	if !got.Open() {
		t.Error("checkout should remain open after damage report")
	}
}

func TestReportRequiresDescription(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, err := ResolveOrCreate(ctx, database, "Radio", "R-001")
	if err != nil {
		t.Fatalf("resolving equipment: %v", err)
	}

	if _, err := Report(ctx, database, e.ID, "2026-01-12", "   "); !errors.Is(err, ErrInvalid) {
		t.Errorf("blank description = %v, want ErrInvalid", err)
	}
	// No half-applied state: the status must not have moved.
	if status := equipmentStatusOf(t, database, e.ID); status != model.StatusCheckedOut {
		t.Errorf("status = %s, want unchanged %s", status, model.StatusCheckedOut)
	}
}

func TestReportsStackAsHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, err := ResolveOrCreate(ctx, database, "Radio", "R-001")
	if err != nil {
		t.Fatalf("resolving equipment: %v", err)
	}

	if _, err := Report(ctx, database, e.ID, "2026-01-12", "cracked casing"); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if _, err := Report(ctx, database, e.ID, "2026-01-14", "battery swollen"); err != nil {
		t.Fatalf("second report: %v", err)
	}

	reports, err := ListReports(ctx, database)
	if err != nil {
		t.Fatalf("listing reports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	// Newest first.
	if reports[0].Description != "battery swollen" {
		t.Errorf("first listed = %q, want newest", reports[0].Description)
	}
}

func TestReportUnknownEquipment(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := Report(context.Background(), database, 999, "2026-01-12", "broken")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("report on unknown equipment = %v, want ErrNotFound", err)
	}
}

func TestAttachAndRemoveImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, err := ResolveOrCreate(ctx, database, "Radio", "R-001")
	if err != nil {
		t.Fatalf("resolving equipment: %v", err)
	}
	r, err := Report(ctx, database, e.ID, "2026-01-12", "cracked casing")
	if err != nil {
		t.Fatalf("reporting damage: %v", err)
	}

	photo := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	imageID, err := AttachImage(ctx, database, r.ID, photo, "image/jpeg")
	if err != nil {
		t.Fatalf("attaching image: %v", err)
	}

	got, err := GetReport(ctx, database, r.ID)
	if err != nil {
		t.Fatalf("getting report: %v", err)
	}
	if len(got.ImageIDs) != 1 || got.ImageIDs[0] != imageID {
		t.Errorf("image ids = %v, want [%d]", got.ImageIDs, imageID)
	}

	data, mime, err := GetImage(ctx, database, imageID)
	if err != nil {
		t.Fatalf("getting image: %v", err)
	}
	if !bytes.Equal(data, photo) || mime != "image/jpeg" {
		t.Errorf("image = %d bytes %q, want %d bytes image/jpeg", len(data), mime, len(photo))
	}

	if err := RemoveImage(ctx, database, r.ID, imageID); err != nil {
		t.Fatalf("removing image: %v", err)
	}
	got, err = GetReport(ctx, database, r.ID)
	if err != nil {
		t.Fatalf("getting report: %v", err)
	}
	if len(got.ImageIDs) != 0 {
		t.Errorf("image ids after removal = %v, want empty", got.ImageIDs)
	}

	data, _, err = GetImage(ctx, database, imageID)
	if err != nil {
		t.Fatalf("getting removed image: %v", err)
	}
	if data != nil {
		t.Error("removed image should be gone")
	}
}

func TestAttachImageLimit(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, err := ResolveOrCreate(ctx, database, "Radio", "R-001")
	if err != nil {
		t.Fatalf("resolving equipment: %v", err)
	}
	r, err := Report(ctx, database, e.ID, "2026-01-12", "cracked casing")
	if err != nil {
		t.Fatalf("reporting damage: %v", err)
	}

	for i := 0; i < model.MaxDamageImages; i++ {
		if _, err := AttachImage(ctx, database, r.ID, []byte{byte(i)}, "image/jpeg"); err != nil {
			t.Fatalf("attaching image %d: %v", i, err)
		}
	}
	if _, err := AttachImage(ctx, database, r.ID, []byte{0xFF}, "image/jpeg"); !errors.Is(err, ErrInvalid) {
		t.Errorf("attach over limit = %v, want ErrInvalid", err)
	}
}

func TestAttachImageUnknownReport(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := AttachImage(context.Background(), database, 999, []byte{0x00}, "image/jpeg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("attach on unknown report = %v, want ErrNotFound", err)
	}
}
