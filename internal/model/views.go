package model

// EquipmentStats is the dashboard headline: equipment counts by status.
type EquipmentStats struct {
	Total           int `json:"total"`
	InStock         int `json:"in_stock"`
	CheckedOut      int `json:"checked_out"`
	NeedsInspection int `json:"needs_inspection"`
	Damaged         int `json:"damaged"`
}

// TypeCount is the per-type equipment count, regardless of status.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CohortTypeCount is one cell of the cohort-by-type pivot of open
// checkouts.
type CohortTypeCount struct {
	CohortID      int64  `json:"cohort_id"`
	CohortName    string `json:"cohort_name"`
	CohortColor   string `json:"cohort_color,omitempty"`
	EquipmentType string `json:"equipment_type"`
	Count         int    `json:"count"`
}

// RosterEntry is one row of the per-cohort roster: a person left-joined
// to their latest checkout and its equipment. Checkout fields are nil
// for people who never checked anything out.
type RosterEntry struct {
	PersonnelID     int64    `json:"personnel_id"`
	Name            string   `json:"name"`
	DuplicateTag    string   `json:"duplicate_tag,omitempty"`
	CheckoutID      *int64   `json:"checkout_id,omitempty"`
	CheckoutDate    string   `json:"checkout_date,omitempty"`
	ReturnDate      *string  `json:"return_date,omitempty"`
	Remarks         string   `json:"remarks,omitempty"`
	PreviousSerials []string `json:"previous_serials,omitempty"`
	EquipmentID     *int64   `json:"equipment_id,omitempty"`
	EquipmentType   string   `json:"equipment_type,omitempty"`
	SerialNumber    string   `json:"serial_number,omitempty"`
	Status          Status   `json:"status,omitempty"`
}

// TypeColor maps an equipment type to its display color.
type TypeColor struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}
