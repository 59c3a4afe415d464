package db

import "github.com/expotoworld/programs-service/internal/policy"

// Pagination bounds a list query. A Limit of zero means no limit.
type Pagination struct {
	Limit  int
	Offset int
}

// ProgramFilter narrows a program listing. Statuses is required: an empty
// set matches nothing.
type ProgramFilter struct {
	Statuses        []policy.Status
	OrganizationKey string
	Pagination
}

// CourseCodeFilter narrows a course code listing by owning organization key.
type CourseCodeFilter struct {
	OrganizationKey string
	Pagination
}

func statusStrings(statuses []policy.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// window applies a pagination window to n items, returning slice bounds.
func (p Pagination) window(n int) (int, int) {
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if p.Limit > 0 && start+p.Limit < n {
		end = start + p.Limit
	}
	return start, end
}

// limitArg renders Limit as a SQL LIMIT argument; NULL means unbounded.
func (p Pagination) limitArg() interface{} {
	if p.Limit <= 0 {
		return nil
	}
	return p.Limit
}
