package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expotoworld/programs-service/internal/models"
	"github.com/jackc/pgx/v5"
)

// ListOrganizations returns organizations ordered by key.
func (db *Database) ListOrganizations(ctx context.Context, p Pagination) (models.Page[models.Organization], error) {
	page := models.Page[models.Organization]{Results: []models.Organization{}}
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&page.Count); err != nil {
		return page, fmt.Errorf("failed to count organizations: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, key, display_name
		FROM organizations
		ORDER BY key
		LIMIT $1::bigint OFFSET $2::bigint`, p.limitArg(), p.Offset)
	if err != nil {
		return page, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Key, &o.DisplayName); err != nil {
			return page, fmt.Errorf("failed to scan organization: %w", err)
		}
		page.Results = append(page.Results, o)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return page, nil
}

// GetOrganization looks an organization up by key.
func (db *Database) GetOrganization(ctx context.Context, key string) (*models.Organization, error) {
	var o models.Organization
	err := db.Pool.QueryRow(ctx,
		`SELECT id, key, display_name FROM organizations WHERE key = $1`, key,
	).Scan(&o.ID, &o.Key, &o.DisplayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization %q: %w", key, err)
	}
	return &o, nil
}

// CreateOrganization inserts o and fills its id.
func (db *Database) CreateOrganization(ctx context.Context, o *models.Organization) error {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO organizations (key, display_name) VALUES ($1, $2) RETURNING id`,
		o.Key, o.DisplayName,
	).Scan(&o.ID)
	if err != nil {
		return classify(fmt.Errorf("failed to insert organization: %w", err))
	}
	return nil
}

// loadRunModes returns run modes keyed by course code id, in position order.
func (db *Database) loadRunModes(ctx context.Context, courseCodeIDs []int64) (map[int64][]models.RunMode, error) {
	out := make(map[int64][]models.RunMode)
	if len(courseCodeIDs) == 0 {
		return out, nil
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT course_code_id, course_key, mode_slug, sku, start_date
		FROM course_code_run_modes
		WHERE course_code_id = ANY($1::bigint[])
		ORDER BY course_code_id, position`, courseCodeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query run modes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ccID      int64
			rm        models.RunMode
			startDate *time.Time
		)
		if err := rows.Scan(&ccID, &rm.CourseKey, &rm.ModeSlug, &rm.SKU, &startDate); err != nil {
			return nil, fmt.Errorf("failed to scan run mode: %w", err)
		}
		if startDate != nil {
			t := startDate.UTC()
			rm.StartDate = &t
		}
		out[ccID] = append(out[ccID], rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run modes: %w", err)
	}
	return out, nil
}
