package service

import (
	"context"

	"github.com/expotoworld/programs-service/internal/db"
	"github.com/expotoworld/programs-service/internal/models"
)

// Store is the persistence the service needs. *db.Database and
// *db.MemoryStore both satisfy it.
type Store interface {
	Health(ctx context.Context) error

	ListPrograms(ctx context.Context, f db.ProgramFilter) (models.Page[models.Program], error)
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	ProgramNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CreateProgram(ctx context.Context, p *models.Program) error
	UpdateProgram(ctx context.Context, p *models.Program) error
	AddProgramOrganization(ctx context.Context, programID, organizationID int64) error
	AddProgramCourseCode(ctx context.Context, programID, courseCodeID int64) error

	ListOrganizations(ctx context.Context, p db.Pagination) (models.Page[models.Organization], error)
	GetOrganization(ctx context.Context, key string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, o *models.Organization) error

	ListCourseCodes(ctx context.Context, f db.CourseCodeFilter) (models.Page[models.CourseCode], error)
	GetCourseCode(ctx context.Context, organizationKey, key string) (*models.CourseCode, error)
	CreateCourseCode(ctx context.Context, cc *models.CourseCode) error
}

// ImageStore persists uploaded banner images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

var (
	_ Store = (*db.Database)(nil)
	_ Store = (*db.MemoryStore)(nil)
)
