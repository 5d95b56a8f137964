package model

// Cohort is a named personnel group (e.g. an intake class). Cohorts are
// never hard-deleted outside a factory reset; the hidden flag removes
// one from normal listings without touching its members or history.
type Cohort struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	SortOrder int    `json:"sort_order"`
	Hidden    bool   `json:"hidden"`

	// Joined fields (not always populated).
	TotalPersonnel  int `json:"total_personnel"`
	CheckedOutCount int `json:"checked_out_count"`
}
