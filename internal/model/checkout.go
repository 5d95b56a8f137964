package model

import "strings"

// Checkout is one assignment of an equipment unit to a person, open
// until its return date is set. PreviousSerials is the ordered chain of
// serial numbers this assignment held before the current one, extended
// each time the equipment is replaced mid-assignment.
type Checkout struct {
	ID              int64    `json:"id"`
	PersonnelID     int64    `json:"personnel_id"`
	EquipmentID     int64    `json:"equipment_id"`
	CheckoutDate    string   `json:"checkout_date"`
	ReturnDate      *string  `json:"return_date,omitempty"`
	Remarks         string   `json:"remarks,omitempty"`
	PreviousSerials []string `json:"previous_serials,omitempty"`

	// Joined fields (not always populated).
	EquipmentType string `json:"equipment_type,omitempty"`
	SerialNumber  string `json:"serial_number,omitempty"`
	Status        Status `json:"status,omitempty"`
}

// Open reports whether the assignment is still active (not returned).
func (c *Checkout) Open() bool {
	return c.ReturnDate == nil
}

// serialChainSep matches the on-disk format of the previous_serial
// column; change it and old rows stop splitting correctly.
const serialChainSep = ", "

// JoinSerialChain serializes a serial chain for storage.
// Returns "" for an empty chain (stored as NULL).
func JoinSerialChain(chain []string) string {
	return strings.Join(chain, serialChainSep)
}

// SplitSerialChain parses a stored serial chain.
func SplitSerialChain(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, serialChainSep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
