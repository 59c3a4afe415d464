// Package policy decides who may see and change Program records.
//
// Visibility is a function of the caller's role and the program's status.
// The same predicate backs both list and retrieve so the two paths can
// never disagree about which records exist for a caller.
package policy

import "strings"

// Role classifies an authenticated caller.
type Role string

const (
	RoleAdmins   Role = "ADMINS"
	RoleLearners Role = "LEARNERS"
)

// ParseRole maps a claim value onto a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(RoleAdmins):
		return RoleAdmins, true
	case string(RoleLearners):
		return RoleLearners, true
	}
	return "", false
}

// Status is the lifecycle state of a program (mirrors DB enum program_status).
type Status string

const (
	StatusUnpublished Status = "unpublished"
	StatusActive      Status = "active"
	StatusRetired     Status = "retired"
	StatusDeleted     Status = "deleted"
)

// Statuses lists every recognized status in lifecycle order.
var Statuses = []Status{StatusUnpublished, StatusActive, StatusRetired, StatusDeleted}

// ParseStatus returns the Status named by s. Matching is exact.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Category classifies a program (mirrors DB enum program_category).
type Category string

const (
	CategoryXSeries Category = "xseries"
)

// Categories lists every recognized category.
var Categories = []Category{CategoryXSeries}

// ParseCategory returns the Category named by s. Matching is exact.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// IsVisible reports whether a program in the given status exists as far as
// a caller with the given role is concerned.
func IsVisible(status Status, role Role) bool {
	switch role {
	case RoleAdmins:
		return status != StatusDeleted
	case RoleLearners:
		return status == StatusActive || status == StatusRetired
	}
	return false
}

// VisibleStatuses returns the statuses IsVisible admits for role, in
// lifecycle order.
func VisibleStatuses(role Role) []Status {
	out := make([]Status, 0, len(Statuses))
	for _, st := range Statuses {
		if IsVisible(st, role) {
			out = append(out, st)
		}
	}
	return out
}

// CanCreateWithStatus reports whether a new program may start in status.
// Only unpublished programs can be created; every other transition happens
// through an update.
func CanCreateWithStatus(status Status) bool {
	return status == StatusUnpublished
}
