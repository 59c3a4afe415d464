package policy

// Operation names an action a caller may attempt.
type Operation string

const (
	OpListPrograms       Operation = "list_programs"
	OpViewProgram        Operation = "view_program"
	OpCreateProgram      Operation = "create_program"
	OpUpdateProgram      Operation = "update_program"
	OpLinkProgram        Operation = "link_program"
	OpUploadBanner       Operation = "upload_banner"
	OpListOrganizations  Operation = "list_organizations"
	OpCreateOrganization Operation = "create_organization"
	OpListCourseCodes    Operation = "list_course_codes"
	OpCreateCourseCode   Operation = "create_course_code"
)

// learnerOps are the only operations open to non-admin callers.
var learnerOps = map[Operation]bool{
	OpListPrograms: true,
	OpViewProgram:  true,
}

// Can reports whether role may perform op. Admins may do everything;
// learners may only read programs. Unknown roles may do nothing.
func Can(role Role, op Operation) bool {
	switch role {
	case RoleAdmins:
		return true
	case RoleLearners:
		return learnerOps[op]
	}
	return false
}
