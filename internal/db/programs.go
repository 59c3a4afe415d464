package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expotoworld/programs-service/internal/models"
	"github.com/expotoworld/programs-service/internal/policy"
	"github.com/jackc/pgx/v5"
)

const programColumns = `p.id, p.name, p.subtitle, p.category, p.status, p.banner_image_url, p.created_at, p.updated_at`

const programWhere = `
	WHERE p.status = ANY($1::text[])
	  AND ($2::text = '' OR EXISTS (
		SELECT 1 FROM program_organizations po
		JOIN organizations o ON o.id = po.organization_id
		WHERE po.program_id = p.id AND o.key = $2::text
	  ))`

func scanProgram(row pgx.Row) (models.Program, error) {
	var (
		p                 models.Program
		category, status  string
		created, modified time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Subtitle, &category, &status, &p.BannerImageURL, &created, &modified); err != nil {
		return p, err
	}
	p.Category = policy.Category(category)
	p.Status = policy.Status(status)
	p.Created = models.NewTimestamp(created)
	p.Modified = models.NewTimestamp(modified)
	return p, nil
}

// ListPrograms returns programs matching the filter ordered by id, with associations loaded.
func (db *Database) ListPrograms(ctx context.Context, f ProgramFilter) (models.Page[models.Program], error) {
	page := models.Page[models.Program]{Results: []models.Program{}}
	if len(f.Statuses) == 0 {
		return page, nil
	}
	statuses := statusStrings(f.Statuses)

	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM programs p`+programWhere, statuses, f.OrganizationKey).Scan(&page.Count); err != nil {
		return page, fmt.Errorf("failed to count programs: %w", err)
	}

	query := `SELECT ` + programColumns + ` FROM programs p` + programWhere + `
		ORDER BY p.id
		LIMIT $3::bigint OFFSET $4::bigint`
	rows, err := db.Pool.Query(ctx, query, statuses, f.OrganizationKey, f.limitArg(), f.Offset)
	if err != nil {
		return page, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return page, fmt.Errorf("failed to scan program: %w", err)
		}
		page.Results = append(page.Results, p)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to iterate programs: %w", err)
	}

	if err := db.loadProgramAssociations(ctx, page.Results); err != nil {
		return page, err
	}
	return page, nil
}

// GetProgram returns one program regardless of status.
func (db *Database) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+programColumns+` FROM programs p WHERE p.id = $1`, id)
	p, err := scanProgram(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get program %d: %w", id, err)
	}
	list := []models.Program{p}
	if err := db.loadProgramAssociations(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ProgramNameExists reports whether another program already uses name.
func (db *Database) ProgramNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM programs WHERE name = $1 AND id <> $2)`,
		name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check program name: %w", err)
	}
	return exists, nil
}

// CreateProgram inserts p and fills its id and timestamps.
func (db *Database) CreateProgram(ctx context.Context, p *models.Program) error {
	var created, modified time.Time
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO programs (name, subtitle, category, status, banner_image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Subtitle, string(p.Category), string(p.Status), p.BannerImageURL,
	).Scan(&p.ID, &created, &modified)
	if err != nil {
		return classify(fmt.Errorf("failed to insert program: %w", err))
	}
	p.Created = models.NewTimestamp(created)
	p.Modified = models.NewTimestamp(modified)
	p.Normalize()
	return nil
}

// UpdateProgram writes the scalar fields of p and refreshes its modified time.
func (db *Database) UpdateProgram(ctx context.Context, p *models.Program) error {
	var modified time.Time
	err := db.Pool.QueryRow(ctx, `
		UPDATE programs
		SET name = $2, subtitle = $3, category = $4, status = $5, banner_image_url = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Name, p.Subtitle, string(p.Category), string(p.Status), p.BannerImageURL,
	).Scan(&modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return classify(fmt.Errorf("failed to update program %d: %w", p.ID, err))
	}
	p.Modified = models.NewTimestamp(modified)
	return nil
}

// AddProgramOrganization links an organization to a program.
func (db *Database) AddProgramOrganization(ctx context.Context, programID, organizationID int64) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO program_organizations (program_id, organization_id) VALUES ($1, $2)`,
		programID, organizationID)
	if err != nil {
		return classify(fmt.Errorf("failed to link organization: %w", err))
	}
	return nil
}

// AddProgramCourseCode links a course code to a program.
func (db *Database) AddProgramCourseCode(ctx context.Context, programID, courseCodeID int64) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO program_course_codes (program_id, course_code_id) VALUES ($1, $2)`,
		programID, courseCodeID)
	if err != nil {
		return classify(fmt.Errorf("failed to link course code: %w", err))
	}
	return nil
}

// loadProgramAssociations fills organizations and course codes, in link order.
func (db *Database) loadProgramAssociations(ctx context.Context, programs []models.Program) error {
	if len(programs) == 0 {
		return nil
	}
	ids := make([]int64, len(programs))
	index := make(map[int64]int, len(programs))
	for i := range programs {
		ids[i] = programs[i].ID
		index[programs[i].ID] = i
		programs[i].Organizations = []models.Organization{}
		programs[i].CourseCodes = []models.CourseCode{}
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT po.program_id, o.id, o.key, o.display_name
		FROM program_organizations po
		JOIN organizations o ON o.id = po.organization_id
		WHERE po.program_id = ANY($1::bigint[])
		ORDER BY po.program_id, po.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query program organizations: %w", err)
	}
	for rows.Next() {
		var programID int64
		var o models.Organization
		if err := rows.Scan(&programID, &o.ID, &o.Key, &o.DisplayName); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan program organization: %w", err)
		}
		i := index[programID]
		programs[i].Organizations = append(programs[i].Organizations, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate program organizations: %w", err)
	}

	rows, err = db.Pool.Query(ctx, `
		SELECT pc.program_id, c.id, c.key, c.display_name, o.id, o.key, o.display_name
		FROM program_course_codes pc
		JOIN course_codes c ON c.id = pc.course_code_id
		JOIN organizations o ON o.id = c.organization_id
		WHERE pc.program_id = ANY($1::bigint[])
		ORDER BY pc.program_id, pc.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query program course codes: %w", err)
	}
	var courseCodeIDs []int64
	for rows.Next() {
		var programID int64
		var cc models.CourseCode
		if err := rows.Scan(&programID, &cc.ID, &cc.Key, &cc.DisplayName,
			&cc.Organization.ID, &cc.Organization.Key, &cc.Organization.DisplayName); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan program course code: %w", err)
		}
		i := index[programID]
		programs[i].CourseCodes = append(programs[i].CourseCodes, cc)
		courseCodeIDs = append(courseCodeIDs, cc.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate program course codes: %w", err)
	}

	runModes, err := db.loadRunModes(ctx, courseCodeIDs)
	if err != nil {
		return err
	}
	for i := range programs {
		for j := range programs[i].CourseCodes {
			cc := &programs[i].CourseCodes[j]
			cc.RunModes = runModes[cc.ID]
			cc.Normalize()
		}
	}
	return nil
}

// BannerImageURLs returns every stored banner URL, including those of deleted programs.
func (db *Database) BannerImageURLs(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT banner_image_url FROM programs WHERE banner_image_url IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query banner urls: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan banner url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
