package model

// DamageReport is one damage incident tied to an equipment unit.
// Reports are immutable once filed except for photo attachment and
// removal. ImageIDs lists the attached damage_images rows in attach
// order; it is serialized into the image_path column as a JSON array.
type DamageReport struct {
	ID          int64   `json:"id"`
	EquipmentID int64   `json:"equipment_id"`
	ReportDate  string  `json:"report_date"`
	Description string  `json:"description"`
	ImageIDs    []int64 `json:"image_ids,omitempty"`

	// Joined fields (not always populated).
	EquipmentType string `json:"equipment_type,omitempty"`
	SerialNumber  string `json:"serial_number,omitempty"`
}

// MaxDamageImages caps the photos attached to one report.
const MaxDamageImages = 10
