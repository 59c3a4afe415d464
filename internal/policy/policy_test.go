package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVisible(t *testing.T) {
	tests := []struct {
		status   Status
		admins   bool
		learners bool
	}{
		{StatusUnpublished, true, false},
		{StatusActive, true, true},
		{StatusRetired, true, true},
		{StatusDeleted, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.admins, IsVisible(tt.status, RoleAdmins))
			assert.Equal(t, tt.learners, IsVisible(tt.status, RoleLearners))
			assert.False(t, IsVisible(tt.status, Role("")))
		})
	}
}

func TestVisibleStatuses(t *testing.T) {
	assert.Equal(t, []Status{StatusUnpublished, StatusActive, StatusRetired}, VisibleStatuses(RoleAdmins))
	assert.Equal(t, []Status{StatusActive, StatusRetired}, VisibleStatuses(RoleLearners))
	assert.Empty(t, VisibleStatuses(Role("GUESTS")))
}

func TestCanCreateWithStatus(t *testing.T) {
	assert.True(t, CanCreateWithStatus(StatusUnpublished))
	for _, st := range []Status{StatusActive, StatusRetired, StatusDeleted, Status(""), Status("unrecognized")} {
		assert.False(t, CanCreateWithStatus(st), "status %q", st)
	}
}

func TestCan(t *testing.T) {
	all := []Operation{
		OpListPrograms, OpViewProgram, OpCreateProgram, OpUpdateProgram, OpLinkProgram,
		OpUploadBanner, OpListOrganizations, OpCreateOrganization, OpListCourseCodes, OpCreateCourseCode,
	}
	for _, op := range all {
		assert.True(t, Can(RoleAdmins, op), "admins should be allowed %s", op)
		assert.False(t, Can(Role(""), op), "unknown role should be denied %s", op)
	}

	assert.True(t, Can(RoleLearners, OpListPrograms))
	assert.True(t, Can(RoleLearners, OpViewProgram))
	for _, op := range all[2:] {
		assert.False(t, Can(RoleLearners, op), "learners should be denied %s", op)
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("admins")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmins, r)

	r, ok = ParseRole(" LEARNERS ")
	assert.True(t, ok)
	assert.Equal(t, RoleLearners, r)

	_, ok = ParseRole("staff")
	assert.False(t, ok)
}

func TestParseStatusAndCategory(t *testing.T) {
	for _, st := range Statuses {
		got, ok := ParseStatus(string(st))
		assert.True(t, ok)
		assert.Equal(t, st, got)
	}
	_, ok := ParseStatus("ACTIVE")
	assert.False(t, ok, "status matching is exact")
	_, ok = ParseStatus(" ")
	assert.False(t, ok)

	c, ok := ParseCategory("xseries")
	assert.True(t, ok)
	assert.Equal(t, CategoryXSeries, c)
	_, ok = ParseCategory("")
	assert.False(t, ok)
}
