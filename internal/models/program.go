package models

import (
	"time"

	"github.com/expotoworld/programs-service/internal/policy"
)

// Program is a curriculum made of course codes offered by organizations.
// Backed by table `programs`
type Program struct {
	ID             int64           `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Subtitle       *string         `json:"subtitle" db:"subtitle"`
	Category       policy.Category `json:"category" db:"category"`
	Status         policy.Status   `json:"status" db:"status"`
	BannerImageURL *string         `json:"banner_image_url,omitempty" db:"banner_image_url"`
	Organizations  []Organization  `json:"organizations"`
	CourseCodes    []CourseCode    `json:"course_codes"`
	Created        Timestamp       `json:"created" db:"created_at"`
	Modified       Timestamp       `json:"modified" db:"updated_at"`
}

// TimestampLayout renders microsecond precision with a Z suffix for UTC.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp is a server-assigned time rendered with fixed microsecond precision.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to the precision the database stores.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(`"`+TimestampLayout+`"`, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ensureCollections replaces nil association slices so they render as [].
func (p *Program) ensureCollections() {
	if p.Organizations == nil {
		p.Organizations = []Organization{}
	}
	if p.CourseCodes == nil {
		p.CourseCodes = []CourseCode{}
	}
	for i := range p.CourseCodes {
		if p.CourseCodes[i].RunModes == nil {
			p.CourseCodes[i].RunModes = []RunMode{}
		}
	}
}

// Normalize prepares a program for rendering.
func (p *Program) Normalize() *Program {
	p.ensureCollections()
	return p
}
