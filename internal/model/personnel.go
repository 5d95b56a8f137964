package model

import "fmt"

// Personnel is a person belonging to exactly one cohort. DuplicateTag
// disambiguates two people with the same name within a cohort.
// LastCheckoutID points at the person's most recent checkout row,
// whether open or returned; nil means they never checked anything out.
type Personnel struct {
	ID             int64  `json:"id"`
	CohortID       int64  `json:"cohort_id"`
	Name           string `json:"name"`
	DuplicateTag   string `json:"duplicate_tag,omitempty"`
	LastCheckoutID *int64 `json:"last_checkout_id,omitempty"`
}

// DisplayName renders the person's name with their duplicate tag,
// matching the "Name (tag)" convention used by the bulk importer.
func (p *Personnel) DisplayName() string {
	if p.DuplicateTag == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.DuplicateTag)
}
