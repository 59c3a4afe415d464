package api

import (
	"context"
	"net/http"
	"time"

	"github.com/expotoworld/programs-service/internal/service"
	"github.com/gin-gonic/gin"
)

// ListPrograms handles GET /programs
func (h *Handler) ListPrograms(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	p, pageErr := parsePage(c)
	page, err := h.svc.ListPrograms(ctx, CallerFrom(c), service.ProgramQuery{
		Status:       c.Query("status"),
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

// GetProgram handles GET /programs/:id
func (h *Handler) GetProgram(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	caller := CallerFrom(c)
	id, err := service.ParseProgramID(c.Param("id"))
	if err != nil {
		// Authentication is still reported ahead of a malformed id.
		if !caller.Authenticated {
			err = service.ErrAuthenticationRequired
		}
		renderError(c, err)
		return
	}
	program, err := h.svc.GetProgram(ctx, caller, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

// CreateProgram handles POST /programs
func (h *Handler) CreateProgram(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	caller := CallerFrom(c)
	var in service.ProgramInput
	if !bindJSON(c, caller, &in) {
		return
	}
	program, err := h.svc.CreateProgram(ctx, caller, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, program)
}

// UpdateProgram handles PATCH /programs/:id
func (h *Handler) UpdateProgram(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	caller := CallerFrom(c)
	id, ok := programID(c, caller)
	if !ok {
		return
	}
	var in service.ProgramInput
	if !bindJSON(c, caller, &in) {
		return
	}
	program, err := h.svc.UpdateProgram(ctx, caller, id, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

// AddProgramOrganization handles POST /programs/:id/organizations
func (h *Handler) AddProgramOrganization(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	caller := CallerFrom(c)
	id, ok := programID(c, caller)
	if !ok {
		return
	}
	var in service.LinkOrganizationInput
	if !bindJSON(c, caller, &in) {
		return
	}
	program, err := h.svc.AddProgramOrganization(ctx, caller, id, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, program)
}

// AddProgramCourseCode handles POST /programs/:id/course_codes
func (h *Handler) AddProgramCourseCode(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	caller := CallerFrom(c)
	id, ok := programID(c, caller)
	if !ok {
		return
	}
	var in service.LinkCourseCodeInput
	if !bindJSON(c, caller, &in) {
		return
	}
	program, err := h.svc.AddProgramCourseCode(ctx, caller, id, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, program)
}

// programID parses the :id path parameter for write routes, reporting
// authentication and permission problems before a malformed id.
func programID(c *gin.Context, caller service.Caller) (int64, bool) {
	id, err := service.ParseProgramID(c.Param("id"))
	if err == nil {
		return id, true
	}
	switch {
	case !caller.Authenticated:
		renderError(c, service.ErrAuthenticationRequired)
	case !isAdmin(caller):
		renderError(c, service.ErrPermissionDenied)
	default:
		renderError(c, err)
	}
	return 0, false
}

// bindJSON decodes the request body of an admin-only route into dst. An empty
// body leaves dst zero. Callers who may not use the route are rejected ahead
// of any decode error.
func bindJSON(c *gin.Context, caller service.Caller, dst interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		switch {
		case !caller.Authenticated:
			renderError(c, service.ErrAuthenticationRequired)
		case !isAdmin(caller):
			renderError(c, service.ErrPermissionDenied)
		default:
			renderBindError(c, err)
		}
		return false
	}
	return true
}
