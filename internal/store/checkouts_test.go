package store

import (
	"context"
	"errors"
	"testing"

	"github.com/yunseo-dev/gearledger/internal/db"
	"github.com/yunseo-dev/gearledger/internal/model"
)

func TestOpenCreatesEquipmentCheckedOut(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")

	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")
	if !ck.Open() {
		t.Error("new checkout should be open")
	}
	if ck.Status != model.StatusCheckedOut {
		t.Errorf("equipment status = %s, want %s", ck.Status, model.StatusCheckedOut)
	}
	if ck.SerialNumber != "R-001" {
		t.Errorf("serial = %q, want R-001", ck.SerialNumber)
	}

	// The latest-checkout pointer must now reference the new row.
	latest, err := LatestFor(ctx, database, person.ID)
	if err != nil {
		t.Fatalf("getting latest checkout: %v", err)
	}
	if latest == nil || latest.ID != ck.ID {
		t.Errorf("latest checkout = %+v, want id %d", latest, ck.ID)
	}
}

func TestOpenRejectsSecondActiveCheckout(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	_, err := Open(ctx, database, person.ID, "Radio", "R-002", "2026-01-11")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second open = %v, want ErrConflict", err)
	}
}

func TestOpenRejectsCheckedOutSerial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	first := seedPerson(t, database, cohort.ID, "Kim Minjun")
	second := seedPerson(t, database, cohort.ID, "Lee Seojun")
	seedOpenCheckout(t, database, first.ID, "Radio", "R-001")

	_, err := Open(ctx, database, second.ID, "Radio", "R-001", "2026-01-11")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("open on held serial = %v, want ErrConflict", err)
	}
}

func TestOpenUnknownPersonnel(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := Open(context.Background(), database, 999, "Radio", "R-001", "2026-01-10")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("open for unknown person = %v, want ErrNotFound", err)
	}
}

func TestCloseSendsEquipmentToInspection(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	if err := Close(ctx, database, ck.ID, "2026-01-15"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}

	got, err := GetCheckout(ctx, database, ck.ID)
	if err != nil {
		t.Fatalf("getting checkout: %v", err)
	}
	if got.Open() {
		t.Error("checkout should be returned")
	}
	if got.ReturnDate == nil || *got.ReturnDate != "2026-01-15" {
		t.Errorf("return date = %v, want 2026-01-15", got.ReturnDate)
	}
	if status := equipmentStatusOf(t, database, ck.EquipmentID); status != model.StatusNeedsInspection {
		t.Errorf("equipment status = %s, want %s", status, model.StatusNeedsInspection)
	}

	// Double close is a conflict, not a silent no-op.
	if err := Close(ctx, database, ck.ID, "2026-01-16"); !errors.Is(err, ErrConflict) {
		t.Errorf("second close = %v, want ErrConflict", err)
	}
}

func TestCloseDamagedEquipmentStaysDamaged(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	if _, err := Report(ctx, database, ck.EquipmentID, "2026-01-12", "cracked casing"); err != nil {
		t.Fatalf("reporting damage: %v", err)
	}
	if err := Close(ctx, database, ck.ID, "2026-01-15"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}

	if status := equipmentStatusOf(t, database, ck.EquipmentID); status != model.StatusDamaged {
		t.Errorf("equipment status after damaged return = %s, want %s", status, model.StatusDamaged)
	}
}

func TestReopenRestoresCheckedOut(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	if err := Close(ctx, database, ck.ID, "2026-01-15"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}
	if err := Reopen(ctx, database, ck.ID); err != nil {
		t.Fatalf("reopening checkout: %v", err)
	}

	got, err := GetCheckout(ctx, database, ck.ID)
	if err != nil {
		t.Fatalf("getting checkout: %v", err)
	}
	if !got.Open() {
		t.Error("reopened checkout should be open")
	}
	if status := equipmentStatusOf(t, database, ck.EquipmentID); status != model.StatusCheckedOut {
		t.Errorf("equipment status = %s, want %s", status, model.StatusCheckedOut)
	}

	// Reopening an already-open checkout is a conflict.
	if err := Reopen(ctx, database, ck.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("reopen of open checkout = %v, want ErrConflict", err)
	}
}

func TestReopenRejectsReissuedEquipment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	first := seedPerson(t, database, cohort.ID, "Kim Minjun")
	second := seedPerson(t, database, cohort.ID, "Lee Seojun")

	ck := seedOpenCheckout(t, database, first.ID, "Radio", "R-001")
	if err := Close(ctx, database, ck.ID, "2026-01-15"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}
	if err := MarkInspected(ctx, database, ck.EquipmentID); err != nil {
		t.Fatalf("marking inspected: %v", err)
	}

	// Same unit goes out to someone else.
	seedOpenCheckout(t, database, second.ID, "Radio", "R-001")

	if err := Reopen(ctx, database, ck.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("reopen of re-issued equipment = %v, want ErrConflict", err)
	}
}

func TestReopenDamagedEquipmentStaysDamaged(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	if err := Close(ctx, database, ck.ID, "2026-01-15"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}
	if _, err := Report(ctx, database, ck.EquipmentID, "2026-01-16", "water damage"); err != nil {
		t.Fatalf("reporting damage: %v", err)
	}
	if err := Reopen(ctx, database, ck.ID); err != nil {
		t.Fatalf("reopening checkout: %v", err)
	}

	if status := equipmentStatusOf(t, database, ck.EquipmentID); status != model.StatusDamaged {
		t.Errorf("equipment status after reopen = %s, want %s", status, model.StatusDamaged)
	}
}

func TestReplaceAppendsSerialChain(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "S1")

	replaced, err := Replace(ctx, database, ck.ID, "Radio", "S2")
	if err != nil {
		t.Fatalf("replacing equipment: %v", err)
	}
	if replaced.SerialNumber != "S2" {
		t.Errorf("serial after replace = %q, want S2", replaced.SerialNumber)
	}
	if len(replaced.PreviousSerials) != 1 || replaced.PreviousSerials[0] != "S1" {
		t.Errorf("previous serials = %v, want [S1]", replaced.PreviousSerials)
	}

	// Old unit goes through the post-return transition.
	old, err := GetEquipmentBySerial(ctx, database, "S1")
	if err != nil {
		t.Fatalf("getting old equipment: %v", err)
	}
	if old.Status != model.StatusNeedsInspection {
		t.Errorf("old equipment status = %s, want %s", old.Status, model.StatusNeedsInspection)
	}

	// A second replacement grows the chain in order.
	replaced, err = Replace(ctx, database, ck.ID, "Radio", "S3")
	if err != nil {
		t.Fatalf("replacing equipment again: %v", err)
	}
	want := []string{"S1", "S2"}
	if len(replaced.PreviousSerials) != len(want) {
		t.Fatalf("previous serials = %v, want %v", replaced.PreviousSerials, want)
	}
	for i := range want {
		if replaced.PreviousSerials[i] != want[i] {
			t.Errorf("previous serials = %v, want %v", replaced.PreviousSerials, want)
			break
		}
	}
}

func TestReplaceRejectsReturnedCheckout(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	if err := Close(ctx, database, ck.ID, "2026-01-15"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}
	if _, err := Replace(ctx, database, ck.ID, "Radio", "R-002"); !errors.Is(err, ErrConflict) {
		t.Errorf("replace on returned checkout = %v, want ErrConflict", err)
	}
}

func TestReplaceRejectsSameSerial(t *testing.T) {
	database := db.NewTestDB(t)

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	// The current unit is CHECKED_OUT, so resolving it again conflicts.
	if _, err := Replace(context.Background(), database, ck.ID, "Radio", "R-001"); !errors.Is(err, ErrConflict) {
		t.Errorf("replace with same serial = %v, want ErrConflict", err)
	}
}

func TestSetRemarks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")
	ck := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")

	if err := SetRemarks(ctx, database, ck.ID, "missing antenna cap"); err != nil {
		t.Fatalf("setting remarks: %v", err)
	}
	got, err := GetCheckout(ctx, database, ck.ID)
	if err != nil {
		t.Fatalf("getting checkout: %v", err)
	}
	if got.Remarks != "missing antenna cap" {
		t.Errorf("remarks = %q, want %q", got.Remarks, "missing antenna cap")
	}

	if err := SetRemarks(ctx, database, ck.ID, "  "); err != nil {
		t.Fatalf("clearing remarks: %v", err)
	}
	got, err = GetCheckout(ctx, database, ck.ID)
	if err != nil {
		t.Fatalf("getting checkout: %v", err)
	}
	if got.Remarks != "" {
		t.Errorf("remarks after clear = %q, want empty", got.Remarks)
	}

	if err := SetRemarks(ctx, database, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remarks on unknown checkout = %v, want ErrNotFound", err)
	}
}

func TestBatchReturnSkipsIneligible(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	holder := seedPerson(t, database, cohort.ID, "Kim Minjun")
	returned := seedPerson(t, database, cohort.ID, "Lee Seojun")
	damaged := seedPerson(t, database, cohort.ID, "Park Jiho")
	empty := seedPerson(t, database, cohort.ID, "Choi Haru")

	seedOpenCheckout(t, database, holder.ID, "Radio", "R-001")

	returnedCk := seedOpenCheckout(t, database, returned.ID, "Radio", "R-002")
	if err := Close(ctx, database, returnedCk.ID, "2026-01-12"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}

	damagedCk := seedOpenCheckout(t, database, damaged.ID, "Radio", "R-003")
	if _, err := Report(ctx, database, damagedCk.EquipmentID, "2026-01-13", "dead battery"); err != nil {
		t.Fatalf("reporting damage: %v", err)
	}

	ids := []int64{holder.ID, returned.ID, damaged.ID, empty.ID}
	closed, err := BatchReturn(ctx, database, ids, "2026-01-20")
	if err != nil {
		t.Fatalf("batch return: %v", err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}

	// Only the plain holder's row was closed; the damaged one stays open.
	got, err := LatestFor(ctx, database, holder.ID)
	if err != nil {
		t.Fatalf("getting latest checkout: %v", err)
	}
	if got.Open() {
		t.Error("holder's checkout should be returned")
	}

	got, err = LatestFor(ctx, database, damaged.ID)
	if err != nil {
		t.Fatalf("getting latest checkout: %v", err)
	}
	if !got.Open() {
		t.Error("damaged holder's checkout should remain open")
	}
}

func TestLatestForNoHistory(t *testing.T) {
	database := db.NewTestDB(t)

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")

	ck, err := LatestFor(context.Background(), database, person.ID)
	if err != nil {
		t.Fatalf("getting latest checkout: %v", err)
	}
	if ck != nil {
		t.Errorf("latest checkout = %+v, want nil", ck)
	}
}

func TestOpenAfterReturnedCheckout(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cohort := seedCohort(t, database, "Alpha")
	person := seedPerson(t, database, cohort.ID, "Kim Minjun")

	first := seedOpenCheckout(t, database, person.ID, "Radio", "R-001")
	if err := Close(ctx, database, first.ID, "2026-01-15"); err != nil {
		t.Fatalf("closing checkout: %v", err)
	}

	// The pointer keeps referencing the returned row, but a new checkout
	// is allowed and advances it.
	second := seedOpenCheckout(t, database, person.ID, "Headset", "H-001")
	latest, err := LatestFor(ctx, database, person.ID)
	if err != nil {
		t.Fatalf("getting latest checkout: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("latest checkout = %+v, want id %d", latest, second.ID)
	}
}
