package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/expotoworld/programs-service/internal/models"
	"github.com/expotoworld/programs-service/internal/policy"
)

// MemoryStore is an in-process store with the same uniqueness rules as the
// PostgreSQL schema. It backs local development without DATABASE_URL and tests.
type MemoryStore struct {
	mu sync.RWMutex

	nextID int64
	now    func() time.Time

	programs      map[int64]*models.Program
	organizations map[int64]*models.Organization
	courseCodes   map[int64]*models.CourseCode

	programOrgs        map[int64][]int64
	programCourseCodes map[int64][]int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:                time.Now,
		programs:           make(map[int64]*models.Program),
		organizations:      make(map[int64]*models.Organization),
		courseCodes:        make(map[int64]*models.CourseCode),
		programOrgs:        make(map[int64][]int64),
		programCourseCodes: make(map[int64][]int64),
	}
}

// SetClock overrides the time source used for created/modified stamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

// Health always succeeds.
func (m *MemoryStore) Health(context.Context) error { return nil }

// ListPrograms returns programs matching the filter ordered by id.
func (m *MemoryStore) ListPrograms(_ context.Context, f ProgramFilter) (models.Page[models.Program], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	allowed := make(map[policy.Status]bool, len(f.Statuses))
	for _, s := range f.Statuses {
		allowed[s] = true
	}

	var ids []int64
	for id, p := range m.programs {
		if !allowed[p.Status] {
			continue
		}
		if f.OrganizationKey != "" && !m.programHasOrganization(id, f.OrganizationKey) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start, end := f.window(len(ids))
	page := models.Page[models.Program]{Count: len(ids), Results: make([]models.Program, 0, end-start)}
	for _, id := range ids[start:end] {
		page.Results = append(page.Results, m.projectProgram(id))
	}
	return page, nil
}

func (m *MemoryStore) programHasOrganization(programID int64, key string) bool {
	for _, orgID := range m.programOrgs[programID] {
		if m.organizations[orgID].Key == key {
			return true
		}
	}
	return false
}

// projectProgram copies a program with its associations resolved.
func (m *MemoryStore) projectProgram(id int64) models.Program {
	p := *m.programs[id]
	p.Organizations = make([]models.Organization, 0, len(m.programOrgs[id]))
	for _, orgID := range m.programOrgs[id] {
		p.Organizations = append(p.Organizations, *m.organizations[orgID])
	}
	p.CourseCodes = make([]models.CourseCode, 0, len(m.programCourseCodes[id]))
	for _, ccID := range m.programCourseCodes[id] {
		p.CourseCodes = append(p.CourseCodes, m.projectCourseCode(ccID))
	}
	return p
}

func (m *MemoryStore) projectCourseCode(id int64) models.CourseCode {
	cc := *m.courseCodes[id]
	cc.RunModes = append([]models.RunMode{}, cc.RunModes...)
	return cc
}

// GetProgram returns one program regardless of status.
func (m *MemoryStore) GetProgram(_ context.Context, id int64) (*models.Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.programs[id]; !ok {
		return nil, ErrNotFound
	}
	p := m.projectProgram(id)
	return &p, nil
}

// BannerImageURLs returns every stored banner URL, including those of deleted programs.
func (m *MemoryStore) BannerImageURLs(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	urls := []string{}
	for _, p := range m.programs {
		if p.BannerImageURL != nil {
			urls = append(urls, *p.BannerImageURL)
		}
	}
	return urls, nil
}

// ProgramNameExists reports whether another program already uses name.
func (m *MemoryStore) ProgramNameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nameTaken(name, excludeID), nil
}

func (m *MemoryStore) nameTaken(name string, excludeID int64) bool {
	for id, p := range m.programs {
		if id != excludeID && p.Name == name {
			return true
		}
	}
	return false
}

// CreateProgram inserts p and fills its id and timestamps.
func (m *MemoryStore) CreateProgram(_ context.Context, p *models.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(p.Name, 0) {
		return &DuplicateError{Field: "name", Constraint: "programs_name_key"}
	}
	now := models.NewTimestamp(m.now())
	p.ID = m.id()
	p.Created = now
	p.Modified = now
	p.Organizations = nil
	p.CourseCodes = nil
	stored := *p
	m.programs[p.ID] = &stored
	p.Normalize()
	return nil
}

// UpdateProgram writes the scalar fields of p and refreshes its modified time.
func (m *MemoryStore) UpdateProgram(_ context.Context, p *models.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.programs[p.ID]
	if !ok {
		return ErrNotFound
	}
	if m.nameTaken(p.Name, p.ID) {
		return &DuplicateError{Field: "name", Constraint: "programs_name_key"}
	}
	stored.Name = p.Name
	stored.Subtitle = p.Subtitle
	stored.Category = p.Category
	stored.Status = p.Status
	stored.BannerImageURL = p.BannerImageURL
	stored.Modified = models.NewTimestamp(m.now())
	p.Modified = stored.Modified
	return nil
}

// AddProgramOrganization links an organization to a program.
func (m *MemoryStore) AddProgramOrganization(_ context.Context, programID, organizationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.programs[programID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.organizations[organizationID]; !ok {
		return ErrNotFound
	}
	for _, id := range m.programOrgs[programID] {
		if id == organizationID {
			return &DuplicateError{Field: "organization", Constraint: "program_organizations_pair_key"}
		}
	}
	m.programOrgs[programID] = append(m.programOrgs[programID], organizationID)
	return nil
}

// AddProgramCourseCode links a course code to a program.
func (m *MemoryStore) AddProgramCourseCode(_ context.Context, programID, courseCodeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.programs[programID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.courseCodes[courseCodeID]; !ok {
		return ErrNotFound
	}
	for _, id := range m.programCourseCodes[programID] {
		if id == courseCodeID {
			return &DuplicateError{Field: "course_code", Constraint: "program_course_codes_pair_key"}
		}
	}
	m.programCourseCodes[programID] = append(m.programCourseCodes[programID], courseCodeID)
	return nil
}

// ListOrganizations returns organizations ordered by key.
func (m *MemoryStore) ListOrganizations(_ context.Context, p Pagination) (models.Page[models.Organization], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]models.Organization, 0, len(m.organizations))
	for _, o := range m.organizations {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	start, end := p.window(len(all))
	return models.Page[models.Organization]{Count: len(all), Results: all[start:end]}, nil
}

// GetOrganization looks an organization up by key.
func (m *MemoryStore) GetOrganization(_ context.Context, key string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.organizations {
		if o.Key == key {
			found := *o
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// CreateOrganization inserts o and fills its id.
func (m *MemoryStore) CreateOrganization(_ context.Context, o *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.organizations {
		if existing.Key == o.Key {
			return &DuplicateError{Field: "key", Constraint: "organizations_key_key"}
		}
	}
	o.ID = m.id()
	stored := *o
	m.organizations[o.ID] = &stored
	return nil
}

// ListCourseCodes returns course codes ordered by organization key then key.
func (m *MemoryStore) ListCourseCodes(_ context.Context, f CourseCodeFilter) (models.Page[models.CourseCode], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]models.CourseCode, 0, len(m.courseCodes))
	for id, cc := range m.courseCodes {
		if f.OrganizationKey != "" && cc.Organization.Key != f.OrganizationKey {
			continue
		}
		all = append(all, m.projectCourseCode(id))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Organization.Key != all[j].Organization.Key {
			return all[i].Organization.Key < all[j].Organization.Key
		}
		return all[i].Key < all[j].Key
	})
	start, end := f.window(len(all))
	return models.Page[models.CourseCode]{Count: len(all), Results: all[start:end]}, nil
}

// GetCourseCode looks a course code up by organization key and key.
func (m *MemoryStore) GetCourseCode(_ context.Context, organizationKey, key string) (*models.CourseCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, cc := range m.courseCodes {
		if cc.Organization.Key == organizationKey && cc.Key == key {
			found := m.projectCourseCode(id)
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// CreateCourseCode inserts cc with its run modes.
// cc.Organization.ID must reference an existing organization.
func (m *MemoryStore) CreateCourseCode(_ context.Context, cc *models.CourseCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.organizations[cc.Organization.ID]
	if !ok {
		return ErrNotFound
	}
	for _, existing := range m.courseCodes {
		if existing.Organization.ID == org.ID && existing.Key == cc.Key {
			return &DuplicateError{Field: "key", Constraint: "course_codes_org_key_key"}
		}
	}
	cc.ID = m.id()
	cc.Organization = *org
	cc.Normalize()
	stored := *cc
	stored.RunModes = append([]models.RunMode{}, cc.RunModes...)
	m.courseCodes[cc.ID] = &stored
	return nil
}
