package model

// Status is the lifecycle state of one equipment unit.
type Status string

// Equipment statuses.
const (
	StatusInStock         Status = "IN_STOCK"
	StatusNeedsInspection Status = "NEEDS_INSPECTION"
	StatusCheckedOut      Status = "CHECKED_OUT"
	StatusDamaged         Status = "DAMAGED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusNeedsInspection, StatusCheckedOut, StatusDamaged:
		return true
	}
	return false
}

// StatusAfterReturn is the status an item takes when its holder hands
// it back: it goes into the inspection queue, except that damage
// dominates and a damaged item stays damaged.
func StatusAfterReturn(current Status) Status {
	if current == StatusDamaged {
		return StatusDamaged
	}
	return StatusNeedsInspection
}

// StatusAfterReopen is the status an item takes when an erroneous
// return is undone: it is actively held again, except that a damaged
// item stays damaged (held and damaged at once).
func StatusAfterReopen(current Status) Status {
	if current == StatusDamaged {
		return StatusDamaged
	}
	return StatusCheckedOut
}

// Equipment represents one physical unit, identified durably by its
// serial number. Type is mutable metadata: resolving an existing serial
// under a new type overwrites it.
type Equipment struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	SerialNumber string `json:"serial_number"`
	Status       Status `json:"status"`

	// Joined fields (not always populated).
	HolderName  string `json:"holder_name,omitempty"`
	CohortName  string `json:"cohort_name,omitempty"`
	CohortColor string `json:"cohort_color,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}
