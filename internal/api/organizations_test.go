package api

import (
	"net/http"
	"testing"

	"github.com/expotoworld/programs-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizations(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/organizations", s.admin, map[string]string{"key": "mitx", "display_name": "MIT"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"key":"mitx","display_name":"MIT"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/organizations", s.admin, map[string]string{"key": "harvardx", "display_name": "Harvard"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/organizations", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"count": 2,
		"next": null,
		"previous": null,
		"results": [
			{"key": "harvardx", "display_name": "Harvard"},
			{"key": "mitx", "display_name": "MIT"}
		]
	}`, w.Body.String())
}

func TestCreateOrganization_Validation(t *testing.T) {
	s := newTestServer(t)
	s.seedOrganization(t, "mitx")

	w := s.do(t, http.MethodPost, "/api/v1/organizations", s.admin, map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string][]string{
		"key":          {"This field is required."},
		"display_name": {"This field is required."},
	}, decode[map[string][]string](t, w))

	w = s.do(t, http.MethodPost, "/api/v1/organizations", s.admin, map[string]string{"key": "mitx", "display_name": "Again"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string][]string{"key": {"This field must be unique."}}, decode[map[string][]string](t, w))
}

func TestOrganizations_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/organizations", s.learner, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/v1/organizations", s.learner,
		map[string]string{"key": "x", "display_name": "X"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/course_codes", s.learner, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/v1/course_codes", s.learner, nil).Code)
}

func TestCourseCodes(t *testing.T) {
	s := newTestServer(t)
	s.seedOrganization(t, "mitx")
	s.seedOrganization(t, "harvardx")

	w := s.do(t, http.MethodPost, "/api/v1/course_codes", s.admin, map[string]interface{}{
		"key":          "6.00x",
		"display_name": "Intro to CS",
		"organization": "mitx",
		"run_modes": []map[string]interface{}{
			{"course_key": "course-v1:MITx+6.00x+2024", "mode_slug": "verified", "sku": "SKU-9", "start_date": "2024-09-01T12:00:00+02:00"},
			{"course_key": "course-v1:MITx+6.00x+2024", "mode_slug": "audit"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"key": "6.00x",
		"display_name": "Intro to CS",
		"organization": {"key": "mitx", "display_name": "MITX"},
		"run_modes": [
			{"course_key": "course-v1:MITx+6.00x+2024", "mode_slug": "verified", "sku": "SKU-9", "start_date": "2024-09-01T10:00:00Z"},
			{"course_key": "course-v1:MITx+6.00x+2024", "mode_slug": "audit", "sku": null, "start_date": null}
		]
	}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/course_codes", s.admin, map[string]interface{}{
		"key": "CS50", "display_name": "CS50", "organization": "harvardx",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []models.RunMode{}, decode[models.CourseCode](t, w).RunModes)

	// The same key under another organization is allowed.
	w = s.do(t, http.MethodPost, "/api/v1/course_codes", s.admin, map[string]interface{}{
		"key": "CS50", "display_name": "CS50 at MIT", "organization": "mitx",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/course_codes", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[listBody[models.CourseCode]](t, w)
	assert.Equal(t, 3, all.Count)

	w = s.do(t, http.MethodGet, "/api/v1/course_codes?organization=harvardx", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decode[listBody[models.CourseCode]](t, w)
	require.Len(t, filtered.Results, 1)
	assert.Equal(t, "CS50", filtered.Results[0].Key)
	assert.Equal(t, "harvardx", filtered.Results[0].Organization.Key)
}

func TestCreateCourseCode_Validation(t *testing.T) {
	s := newTestServer(t)
	s.seedOrganization(t, "mitx")

	w := s.do(t, http.MethodPost, "/api/v1/course_codes", s.admin, map[string]interface{}{
		"key": "6.00x", "display_name": "CS", "organization": "nope",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string][]string{"organization": {"Object with key=nope does not exist."}}, decode[map[string][]string](t, w))

	w = s.do(t, http.MethodPost, "/api/v1/course_codes", s.admin, map[string]interface{}{
		"key": "6.00x", "display_name": "CS", "organization": "mitx",
		"run_modes": []map[string]interface{}{
			{"course_key": "k", "mode_slug": "verified", "start_date": "next tuesday"},
			{"mode_slug": "audit"},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string][]string{"run_modes": {
		"[0].start_date: Datetime has wrong format. Use RFC 3339.",
		"[1].course_key: This field is required.",
	}}, decode[map[string][]string](t, w))

	w = s.do(t, http.MethodPost, "/api/v1/course_codes", s.admin, map[string]interface{}{
		"key": "6.00x", "display_name": "CS", "organization": "mitx",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/course_codes", s.admin, map[string]interface{}{
		"key": "6.00x", "display_name": "CS again", "organization": "mitx",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string][]string{
		"non_field_errors": {"The fields organization, key must make a unique set."},
	}, decode[map[string][]string](t, w))
}
