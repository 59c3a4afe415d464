package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/expotoworld/programs-service/internal/models"
	"github.com/expotoworld/programs-service/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabase connects to PROGRAMS_TEST_DATABASE_URL and empties every table.
// The database it points at is wiped; never aim it at real data.
func testDatabase(t *testing.T) *Database {
	t.Helper()
	dsn := os.Getenv("PROGRAMS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PROGRAMS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	database, err := NewDatabaseWithRetry(ctx, Config{URL: dsn, MaxRetries: 1})
	require.NoError(t, err)
	t.Cleanup(database.Close)

	require.NoError(t, database.InitSchema(ctx))
	_, err = database.Pool.Exec(ctx, `TRUNCATE program_course_codes, program_organizations,
		course_code_run_modes, course_codes, organizations, programs RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return database
}

func pgProgram(t *testing.T, database *Database, name string, status policy.Status) *models.Program {
	t.Helper()
	p := &models.Program{Name: name, Category: policy.CategoryXSeries, Status: status}
	require.NoError(t, database.CreateProgram(context.Background(), p))
	return p
}

func pgOrganization(t *testing.T, database *Database, key string) *models.Organization {
	t.Helper()
	o := &models.Organization{Key: key, DisplayName: key + " University"}
	require.NoError(t, database.CreateOrganization(context.Background(), o))
	return o
}

func TestPostgresProgramNamesAreUnique(t *testing.T) {
	ctx := context.Background()
	database := testDatabase(t)

	p := pgProgram(t, database, "Intro", policy.StatusDeleted)
	assert.NotZero(t, p.ID)
	assert.False(t, p.Created.Time.IsZero())

	err := database.CreateProgram(ctx, &models.Program{Name: "Intro", Category: policy.CategoryXSeries, Status: policy.StatusUnpublished})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup, "a deleted program still holds its name")
	assert.Equal(t, "name", dup.Field)

	exists, err := database.ProgramNameExists(ctx, "Intro", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = database.ProgramNameExists(ctx, "Intro", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	other := pgProgram(t, database, "Other", policy.StatusActive)
	other.Name = "Intro"
	require.ErrorAs(t, database.UpdateProgram(ctx, other), &dup)
	assert.ErrorIs(t, database.UpdateProgram(ctx, &models.Program{ID: 999999, Name: "x", Category: policy.CategoryXSeries, Status: policy.StatusActive}), ErrNotFound)
}

func TestPostgresListPrograms(t *testing.T) {
	ctx := context.Background()
	database := testDatabase(t)
	mit := pgOrganization(t, database, "MITx")

	active := pgProgram(t, database, "Active", policy.StatusActive)
	pgProgram(t, database, "Retired", policy.StatusRetired)
	pgProgram(t, database, "Hidden", policy.StatusUnpublished)
	pgProgram(t, database, "Gone", policy.StatusDeleted)
	require.NoError(t, database.AddProgramOrganization(ctx, active.ID, mit.ID))

	// No limit binds NULL to LIMIT.
	page, err := database.ListPrograms(ctx, ProgramFilter{Statuses: policy.VisibleStatuses(policy.RoleLearners)})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Active", page.Results[0].Name)
	assert.Equal(t, "Retired", page.Results[1].Name)

	page, err = database.ListPrograms(ctx, ProgramFilter{
		Statuses:        policy.VisibleStatuses(policy.RoleAdmins),
		OrganizationKey: "MITx",
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, active.ID, page.Results[0].ID)
	require.Len(t, page.Results[0].Organizations, 1)
	assert.Equal(t, "MITx", page.Results[0].Organizations[0].Key)

	page, err = database.ListPrograms(ctx, ProgramFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.Empty(t, page.Results)

	page, err = database.ListPrograms(ctx, ProgramFilter{
		Statuses:   policy.VisibleStatuses(policy.RoleAdmins),
		Pagination: Pagination{Limit: 2, Offset: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Retired", page.Results[0].Name)
	assert.Equal(t, "Hidden", page.Results[1].Name)
}

func TestPostgresAssociations(t *testing.T) {
	ctx := context.Background()
	database := testDatabase(t)
	p := pgProgram(t, database, "P", policy.StatusActive)
	first := pgOrganization(t, database, "Zeta")
	second := pgOrganization(t, database, "Alpha")

	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	sku := "SKU-1"
	cc := &models.CourseCode{
		Key:          "CS50",
		DisplayName:  "CS",
		Organization: models.Organization{ID: first.ID},
		RunModes: []models.RunMode{
			{CourseKey: "course-v1:Zeta+CS50+2024", ModeSlug: "verified", SKU: &sku, StartDate: &start},
			{CourseKey: "course-v1:Zeta+CS50+2025", ModeSlug: "audit"},
		},
	}
	require.NoError(t, database.CreateCourseCode(ctx, cc))

	var dup *DuplicateError
	require.ErrorAs(t, database.CreateCourseCode(ctx, &models.CourseCode{Key: "CS50", DisplayName: "again", Organization: models.Organization{ID: first.ID}}), &dup)
	assert.Equal(t, "key", dup.Field)

	require.NoError(t, database.AddProgramOrganization(ctx, p.ID, first.ID))
	require.NoError(t, database.AddProgramOrganization(ctx, p.ID, second.ID))
	require.NoError(t, database.AddProgramCourseCode(ctx, p.ID, cc.ID))
	require.ErrorAs(t, database.AddProgramOrganization(ctx, p.ID, first.ID), &dup)
	assert.Equal(t, "organization", dup.Field)

	got, err := database.GetProgram(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Organizations, 2)
	assert.Equal(t, "Zeta", got.Organizations[0].Key, "organizations keep link order")
	assert.Equal(t, "Alpha", got.Organizations[1].Key)
	require.Len(t, got.CourseCodes, 1)
	assert.Equal(t, "Zeta", got.CourseCodes[0].Organization.Key)
	require.Len(t, got.CourseCodes[0].RunModes, 2)
	assert.Equal(t, "verified", got.CourseCodes[0].RunModes[0].ModeSlug)
	require.NotNil(t, got.CourseCodes[0].RunModes[0].StartDate)
	assert.True(t, start.Equal(*got.CourseCodes[0].RunModes[0].StartDate))
	assert.Nil(t, got.CourseCodes[0].RunModes[1].SKU)

	page, err := database.ListCourseCodes(ctx, CourseCodeFilter{OrganizationKey: "Zeta"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Len(t, page.Results[0].RunModes, 2)

	_, err = database.GetProgram(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresBannerImageURLs(t *testing.T) {
	ctx := context.Background()
	database := testDatabase(t)
	p := pgProgram(t, database, "With banner", policy.StatusDeleted)
	pgProgram(t, database, "Without banner", policy.StatusActive)

	url := "https://cdn.example.com/programs/1/banner-a.jpg"
	p.BannerImageURL = &url
	require.NoError(t, database.UpdateProgram(ctx, p))

	urls, err := database.BannerImageURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{url}, urls)
}
