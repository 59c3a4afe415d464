package api

import (
	"context"
	"net/http"
	"time"

	"github.com/expotoworld/programs-service/internal/service"
	"github.com/gin-gonic/gin"
)

// ListOrganizations handles GET /organizations
func (h *Handler) ListOrganizations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	p, pageErr := parsePage(c)
	page, err := h.svc.ListOrganizations(ctx, CallerFrom(c), p.window())
	if err != nil {
		renderError(c, err)
		return
	}
	if pageErr != nil {
		renderInvalidPage(c)
		return
	}
	paginated(c, p, page.Count, page.Results)
}

// CreateOrganization handles POST /organizations
func (h *Handler) CreateOrganization(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	caller := CallerFrom(c)
	var in service.OrganizationInput
	if !bindJSON(c, caller, &in) {
		return
	}
	org, err := h.svc.CreateOrganization(ctx, caller, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

// ListCourseCodes handles GET /course_codes
func (h *Handler) ListCourseCodes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	p, pageErr := parsePage(c)
	page, err := h.svc.ListCourseCodes(ctx, CallerFrom(c), service.CourseCodeQuery{
		Organization: c.Query("organization"),
		Page:         p.window(),
	})
	if err != nil {
		renderError(c, err)
		return
	}
	if pageErr != nil {
		renderInvalidPage(c)
		return
	}
	paginated(c, p, page.Count, page.Results)
}

// CreateCourseCode handles POST /course_codes
func (h *Handler) CreateCourseCode(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	caller := CallerFrom(c)
	var in service.CourseCodeInput
	if !bindJSON(c, caller, &in) {
		return
	}
	cc, err := h.svc.CreateCourseCode(ctx, caller, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cc)
}
