package api

import (
	"errors"
	"net/http"

	"github.com/expotoworld/programs-service/internal/logging"
	"github.com/expotoworld/programs-service/internal/service"
	"github.com/gin-gonic/gin"
)

// renderError writes the response for a service error. Validation errors
// render as the field map; everything else as {"detail": ...}.
func renderError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrAuthenticationRequired):
		c.Header("WWW-Authenticate", `JWT realm="api"`)
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	default:
		_ = c.Error(err)
		logging.LogKV("error", "request failed", map[string]interface{}{
			"error":  err,
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
	}
}

// renderBindError reports a body that could not be decoded.
func renderBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
}
