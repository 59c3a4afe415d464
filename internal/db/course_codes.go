package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/expotoworld/programs-service/internal/models"
	"github.com/jackc/pgx/v5"
)

const courseCodeSelect = `
	SELECT c.id, c.key, c.display_name, o.id, o.key, o.display_name
	FROM course_codes c
	JOIN organizations o ON o.id = c.organization_id`

func scanCourseCode(row pgx.Row) (models.CourseCode, error) {
	var cc models.CourseCode
	err := row.Scan(&cc.ID, &cc.Key, &cc.DisplayName,
		&cc.Organization.ID, &cc.Organization.Key, &cc.Organization.DisplayName)
	return cc, err
}

// ListCourseCodes returns course codes ordered by organization key then key.
func (db *Database) ListCourseCodes(ctx context.Context, f CourseCodeFilter) (models.Page[models.CourseCode], error) {
	page := models.Page[models.CourseCode]{Results: []models.CourseCode{}}
	const where = ` WHERE ($1::text = '' OR o.key = $1::text)`

	if err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM course_codes c JOIN organizations o ON o.id = c.organization_id`+where,
		f.OrganizationKey,
	).Scan(&page.Count); err != nil {
		return page, fmt.Errorf("failed to count course codes: %w", err)
	}

	rows, err := db.Pool.Query(ctx, courseCodeSelect+where+`
		ORDER BY o.key, c.key
		LIMIT $2::bigint OFFSET $3::bigint`, f.OrganizationKey, f.limitArg(), f.Offset)
	if err != nil {
		return page, fmt.Errorf("failed to query course codes: %w", err)
	}
	var ids []int64
	for rows.Next() {
		cc, err := scanCourseCode(rows)
		if err != nil {
			rows.Close()
			return page, fmt.Errorf("failed to scan course code: %w", err)
		}
		page.Results = append(page.Results, cc)
		ids = append(ids, cc.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to iterate course codes: %w", err)
	}

	runModes, err := db.loadRunModes(ctx, ids)
	if err != nil {
		return page, err
	}
	for i := range page.Results {
		page.Results[i].RunModes = runModes[page.Results[i].ID]
		page.Results[i].Normalize()
	}
	return page, nil
}

// GetCourseCode looks a course code up by organization key and key.
func (db *Database) GetCourseCode(ctx context.Context, organizationKey, key string) (*models.CourseCode, error) {
	row := db.Pool.QueryRow(ctx, courseCodeSelect+` WHERE o.key = $1 AND c.key = $2`, organizationKey, key)
	cc, err := scanCourseCode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course code %s/%s: %w", organizationKey, key, err)
	}
	runModes, err := db.loadRunModes(ctx, []int64{cc.ID})
	if err != nil {
		return nil, err
	}
	cc.RunModes = runModes[cc.ID]
	cc.Normalize()
	return &cc, nil
}

// CreateCourseCode inserts cc with its run modes in one transaction.
// cc.Organization.ID must reference an existing organization.
func (db *Database) CreateCourseCode(ctx context.Context, cc *models.CourseCode) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO course_codes (organization_id, key, display_name) VALUES ($1, $2, $3) RETURNING id`,
		cc.Organization.ID, cc.Key, cc.DisplayName,
	).Scan(&cc.ID)
	if err != nil {
		return classify(fmt.Errorf("failed to insert course code: %w", err))
	}

	for i, rm := range cc.RunModes {
		_, err := tx.Exec(ctx, `
			INSERT INTO course_code_run_modes (course_code_id, position, course_key, mode_slug, sku, start_date)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			cc.ID, i, rm.CourseKey, rm.ModeSlug, rm.SKU, rm.StartDate)
		if err != nil {
			return classify(fmt.Errorf("failed to insert run mode %d: %w", i, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	cc.Normalize()
	return nil
}
