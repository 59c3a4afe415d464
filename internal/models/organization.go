package models

import "time"

// Organization is an institution offering course codes.
// Backed by table `organizations`
type Organization struct {
	ID          int64  `json:"-" db:"id"`
	Key         string `json:"key" db:"key"`
	DisplayName string `json:"display_name" db:"display_name"`
}

// CourseCode identifies a course within an organization.
// Backed by table `course_codes`
type CourseCode struct {
	ID           int64        `json:"-" db:"id"`
	Key          string       `json:"key" db:"key"`
	DisplayName  string       `json:"display_name" db:"display_name"`
	Organization Organization `json:"organization"`
	RunModes     []RunMode    `json:"run_modes"`
}

// RunMode is one enrollable run of a course code.
// Backed by table `course_code_run_modes`
type RunMode struct {
	CourseKey string     `json:"course_key" db:"course_key"`
	ModeSlug  string     `json:"mode_slug" db:"mode_slug"`
	SKU       *string    `json:"sku" db:"sku"`
	StartDate *time.Time `json:"start_date" db:"start_date"`
}

// Normalize prepares a course code for rendering.
func (cc *CourseCode) Normalize() *CourseCode {
	if cc.RunModes == nil {
		cc.RunModes = []RunMode{}
	}
	return cc
}

// Page is one slice of an ordered result set plus the size of the whole set.
type Page[T any] struct {
	Count   int
	Results []T
}
