package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/expotoworld/programs-service/internal/db"
	"github.com/expotoworld/programs-service/internal/models"
	"github.com/expotoworld/programs-service/internal/policy"
)

// ProgramQuery holds the optional list filters. Empty strings mean "no filter".
type ProgramQuery struct {
	Status       string
	Organization string
	Page         db.Pagination
}

// ProgramInput is the writable part of a program. Absent fields keep their
// defaults on create and their current values on update.
type ProgramInput struct {
	Name     models.OptionalString `json:"name"`
	Subtitle models.OptionalString `json:"subtitle"`
	Category models.OptionalString `json:"category"`
	Status   models.OptionalString `json:"status"`
}

// ParseProgramID converts a path id. Malformed ids are reported as ErrNotFound.
func ParseProgramID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

// ListPrograms returns the programs visible to the caller, narrowed by q.
func (s *Service) ListPrograms(ctx context.Context, caller Caller, q ProgramQuery) (models.Page[models.Program], error) {
	empty := models.Page[models.Program]{Results: []models.Program{}}
	if err := caller.authorize(policy.OpListPrograms); err != nil {
		return empty, err
	}

	statuses := policy.VisibleStatuses(caller.Role)
	if q.Status != "" {
		status, ok := policy.ParseStatus(q.Status)
		if !ok || !policy.IsVisible(status, caller.Role) {
			return empty, nil
		}
		statuses = []policy.Status{status}
	}

	page, err := s.store.ListPrograms(ctx, db.ProgramFilter{
		Statuses:        statuses,
		OrganizationKey: q.Organization,
		Pagination:      q.Page,
	})
	if err != nil {
		return empty, wrap("list programs", translate(err))
	}
	for i := range page.Results {
		page.Results[i].Normalize()
	}
	return page, nil
}

// GetProgram returns a program if the caller may see it. Hidden programs are
// reported exactly like missing ones.
func (s *Service) GetProgram(ctx context.Context, caller Caller, id int64) (*models.Program, error) {
	if err := caller.authorize(policy.OpViewProgram); err != nil {
		return nil, err
	}
	return s.visibleProgram(ctx, caller, id)
}

func (s *Service) visibleProgram(ctx context.Context, caller Caller, id int64) (*models.Program, error) {
	p, err := s.store.GetProgram(ctx, id)
	if err != nil {
		return nil, wrap("get program", translate(err))
	}
	if !policy.IsVisible(p.Status, caller.Role) {
		return nil, ErrNotFound
	}
	return p.Normalize(), nil
}

// CreateProgram validates in and stores a new program. Only UNPUBLISHED may be
// requested as the initial status.
func (s *Service) CreateProgram(ctx context.Context, caller Caller, in ProgramInput) (*models.Program, error) {
	if err := caller.authorize(policy.OpCreateProgram); err != nil {
		return nil, err
	}

	v := &ValidationError{}
	p := &models.Program{Status: policy.StatusUnpublished}

	if name, ok := requiredString(v, "name", in.Name, maxNameLength); ok {
		p.Name = name
		if err := s.checkNameFree(ctx, v, name, 0); err != nil {
			return nil, err
		}
	}

	if in.Subtitle.Present && !in.Subtitle.Null {
		if utf8.RuneCountInString(in.Subtitle.Value) > maxSubtitleLength {
			v.Add("subtitle", msgMaxLength(maxSubtitleLength))
		}
		p.Subtitle = in.Subtitle.Ptr()
	}

	if !in.Category.Present {
		v.Add("category", MsgRequired)
	} else if category, ok := policy.ParseCategory(choiceValue(in.Category)); !ok || in.Category.Null {
		v.Add("category", msgInvalidChoice(choiceValue(in.Category)))
	} else {
		p.Category = category
	}

	if in.Status.Present {
		status, ok := policy.ParseStatus(choiceValue(in.Status))
		if !ok || in.Status.Null || !policy.CanCreateWithStatus(status) {
			v.Add("status", msgInvalidChoice(choiceValue(in.Status)))
		} else {
			p.Status = status
		}
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.store.CreateProgram(ctx, p); err != nil {
		return nil, wrap("create program", translate(err))
	}
	return p.Normalize(), nil
}

// UpdateProgram applies the present fields of in. Every status is accepted
// here; the creation restriction does not apply to later transitions.
func (s *Service) UpdateProgram(ctx context.Context, caller Caller, id int64, in ProgramInput) (*models.Program, error) {
	if err := caller.authorize(policy.OpUpdateProgram); err != nil {
		return nil, err
	}
	p, err := s.visibleProgram(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	if in.Name.Present {
		if name, ok := requiredString(v, "name", in.Name, maxNameLength); ok {
			if name != p.Name {
				if err := s.checkNameFree(ctx, v, name, p.ID); err != nil {
					return nil, err
				}
			}
			p.Name = name
		}
	}
	if in.Subtitle.Present {
		if utf8.RuneCountInString(in.Subtitle.Value) > maxSubtitleLength {
			v.Add("subtitle", msgMaxLength(maxSubtitleLength))
		}
		p.Subtitle = in.Subtitle.Ptr()
	}
	if in.Category.Present {
		if category, ok := policy.ParseCategory(choiceValue(in.Category)); !ok || in.Category.Null {
			v.Add("category", msgInvalidChoice(choiceValue(in.Category)))
		} else {
			p.Category = category
		}
	}
	if in.Status.Present {
		if status, ok := policy.ParseStatus(choiceValue(in.Status)); !ok || in.Status.Null {
			v.Add("status", msgInvalidChoice(choiceValue(in.Status)))
		} else {
			p.Status = status
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProgram(ctx, p); err != nil {
		return nil, wrap("update program", translate(err))
	}
	return p.Normalize(), nil
}

func (s *Service) checkNameFree(ctx context.Context, v *ValidationError, name string, excludeID int64) error {
	taken, err := s.store.ProgramNameExists(ctx, name, excludeID)
	if err != nil {
		return wrap("check program name", err)
	}
	if taken {
		v.Add("name", MsgUnique)
	}
	return nil
}

// LinkOrganizationInput names the organization to attach to a program.
type LinkOrganizationInput struct {
	Organization models.OptionalString `json:"organization"`
}

// LinkCourseCodeInput names the course code to attach to a program.
type LinkCourseCodeInput struct {
	CourseCode   models.OptionalString `json:"course_code"`
	Organization models.OptionalString `json:"organization"`
}

// AddProgramOrganization attaches an existing organization to a program.
func (s *Service) AddProgramOrganization(ctx context.Context, caller Caller, programID int64, in LinkOrganizationInput) (*models.Program, error) {
	if err := caller.authorize(policy.OpLinkProgram); err != nil {
		return nil, err
	}
	p, err := s.visibleProgram(ctx, caller, programID)
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	key, ok := requiredString(v, "organization", in.Organization, maxKeyLength)
	if !ok {
		return nil, v
	}
	org, err := s.store.GetOrganization(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fieldError("organization", msgDoesNotExist(key))
	}
	if err != nil {
		return nil, wrap("get organization", err)
	}

	if err := s.store.AddProgramOrganization(ctx, p.ID, org.ID); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fieldError("organization", "This organization is already associated with the program.")
		}
		return nil, wrap("link organization", translate(err))
	}
	return s.visibleProgram(ctx, caller, p.ID)
}

// AddProgramCourseCode attaches an existing course code to a program.
func (s *Service) AddProgramCourseCode(ctx context.Context, caller Caller, programID int64, in LinkCourseCodeInput) (*models.Program, error) {
	if err := caller.authorize(policy.OpLinkProgram); err != nil {
		return nil, err
	}
	p, err := s.visibleProgram(ctx, caller, programID)
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	key, keyOK := requiredString(v, "course_code", in.CourseCode, maxKeyLength)
	orgKey, orgOK := requiredString(v, "organization", in.Organization, maxKeyLength)
	if !keyOK || !orgOK {
		return nil, v
	}
	cc, err := s.store.GetCourseCode(ctx, orgKey, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fieldError("course_code", msgDoesNotExist(key))
	}
	if err != nil {
		return nil, wrap("get course code", err)
	}

	if err := s.store.AddProgramCourseCode(ctx, p.ID, cc.ID); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fieldError("course_code", "This course code is already associated with the program.")
		}
		return nil, wrap("link course code", translate(err))
	}
	return s.visibleProgram(ctx, caller, p.ID)
}
