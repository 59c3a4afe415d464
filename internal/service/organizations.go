package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expotoworld/programs-service/internal/db"
	"github.com/expotoworld/programs-service/internal/models"
	"github.com/expotoworld/programs-service/internal/policy"
)

// OrganizationInput is the payload for creating an organization.
type OrganizationInput struct {
	Key         models.OptionalString `json:"key"`
	DisplayName models.OptionalString `json:"display_name"`
}

// ListOrganizations returns organizations ordered by key.
func (s *Service) ListOrganizations(ctx context.Context, caller Caller, page db.Pagination) (models.Page[models.Organization], error) {
	if err := caller.authorize(policy.OpListOrganizations); err != nil {
		return models.Page[models.Organization]{Results: []models.Organization{}}, err
	}
	out, err := s.store.ListOrganizations(ctx, page)
	if err != nil {
		return out, wrap("list organizations", err)
	}
	return out, nil
}

// CreateOrganization validates in and stores a new organization.
func (s *Service) CreateOrganization(ctx context.Context, caller Caller, in OrganizationInput) (*models.Organization, error) {
	if err := caller.authorize(policy.OpCreateOrganization); err != nil {
		return nil, err
	}
	v := &ValidationError{}
	key, _ := requiredString(v, "key", in.Key, maxKeyLength)
	displayName, _ := requiredString(v, "display_name", in.DisplayName, maxDisplayNameLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	org := &models.Organization{Key: key, DisplayName: displayName}
	if err := s.store.CreateOrganization(ctx, org); err != nil {
		return nil, wrap("create organization", translate(err))
	}
	return org, nil
}

// CourseCodeQuery filters the course code listing.
type CourseCodeQuery struct {
	Organization string
	Page         db.Pagination
}

// RunModeInput is one run mode submitted with a course code.
type RunModeInput struct {
	CourseKey models.OptionalString `json:"course_key"`
	ModeSlug  models.OptionalString `json:"mode_slug"`
	SKU       models.OptionalString `json:"sku"`
	StartDate models.OptionalString `json:"start_date"`
}

// CourseCodeInput is the payload for creating a course code.
type CourseCodeInput struct {
	Key          models.OptionalString `json:"key"`
	DisplayName  models.OptionalString `json:"display_name"`
	Organization models.OptionalString `json:"organization"`
	RunModes     []RunModeInput        `json:"run_modes"`
}

// ListCourseCodes returns course codes, optionally for one organization.
func (s *Service) ListCourseCodes(ctx context.Context, caller Caller, q CourseCodeQuery) (models.Page[models.CourseCode], error) {
	if err := caller.authorize(policy.OpListCourseCodes); err != nil {
		return models.Page[models.CourseCode]{Results: []models.CourseCode{}}, err
	}
	out, err := s.store.ListCourseCodes(ctx, db.CourseCodeFilter{OrganizationKey: q.Organization, Pagination: q.Page})
	if err != nil {
		return out, wrap("list course codes", err)
	}
	for i := range out.Results {
		out.Results[i].Normalize()
	}
	return out, nil
}

// CreateCourseCode validates in and stores a course code under an existing organization.
func (s *Service) CreateCourseCode(ctx context.Context, caller Caller, in CourseCodeInput) (*models.CourseCode, error) {
	if err := caller.authorize(policy.OpCreateCourseCode); err != nil {
		return nil, err
	}
	v := &ValidationError{}
	key, _ := requiredString(v, "key", in.Key, maxKeyLength)
	displayName, _ := requiredString(v, "display_name", in.DisplayName, maxDisplayNameLength)
	orgKey, orgOK := requiredString(v, "organization", in.Organization, maxKeyLength)
	runModes := parseRunModes(v, in.RunModes)

	var org *models.Organization
	if orgOK {
		var err error
		org, err = s.store.GetOrganization(ctx, orgKey)
		if errors.Is(err, db.ErrNotFound) {
			v.Add("organization", msgDoesNotExist(orgKey))
		} else if err != nil {
			return nil, wrap("get organization", err)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	cc := &models.CourseCode{
		Key:          key,
		DisplayName:  displayName,
		Organization: *org,
		RunModes:     runModes,
	}
	if err := s.store.CreateCourseCode(ctx, cc); err != nil {
		var dup *db.DuplicateError
		if errors.As(err, &dup) && dup.Field == "key" {
			return nil, fieldError("non_field_errors", "The fields organization, key must make a unique set.")
		}
		return nil, wrap("create course code", translate(err))
	}
	return cc.Normalize(), nil
}

// parseRunModes validates run modes, reporting problems as "run_modes[i].field: message".
func parseRunModes(v *ValidationError, in []RunModeInput) []models.RunMode {
	out := make([]models.RunMode, 0, len(in))
	for i, rm := range in {
		prefix := fmt.Sprintf("[%d].", i)
		nested := &ValidationError{}
		courseKey, _ := requiredString(nested, "course_key", rm.CourseKey, maxNameLength)
		modeSlug, _ := requiredString(nested, "mode_slug", rm.ModeSlug, maxKeyLength)
		mode := models.RunMode{CourseKey: courseKey, ModeSlug: modeSlug, SKU: rm.SKU.Ptr()}
		if raw := rm.StartDate.Ptr(); raw != nil && strings.TrimSpace(*raw) != "" {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
			if err != nil {
				nested.Add("start_date", "Datetime has wrong format. Use RFC 3339.")
			} else {
				t = t.UTC()
				mode.StartDate = &t
			}
		}
		for _, field := range []string{"course_key", "mode_slug", "start_date"} {
			for _, msg := range nested.Fields[field] {
				v.Add("run_modes", prefix+field+": "+msg)
			}
		}
		out = append(out, mode)
	}
	return out
}
