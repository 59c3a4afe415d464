package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/expotoworld/programs-service/internal/service"
	"github.com/gin-gonic/gin"
)

// UploadBanner handles POST /programs/:id/banner_image (multipart field "banner_image").
func (h *Handler) UploadBanner(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second) // Longer timeout for uploads
	defer cancel()

	caller := CallerFrom(c)
	id, ok := programID(c, caller)
	if !ok {
		return
	}

	// Multipart overhead on top of the image itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxBannerBytes+1<<20)
	fileHeader, err := c.FormFile("banner_image")
	if err != nil {
		switch {
		case !caller.Authenticated:
			renderError(c, service.ErrAuthenticationRequired)
		case !isAdmin(caller):
			renderError(c, service.ErrPermissionDenied)
		default:
			var tooLarge *http.MaxBytesError
			msg := "No file was submitted."
			if errors.As(err, &tooLarge) {
				msg = "The submitted file is too large."
			}
			c.JSON(http.StatusBadRequest, gin.H{"banner_image": []string{msg}})
		}
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		renderError(c, err)
		return
	}
	defer file.Close()

	program, err := h.svc.UploadBanner(ctx, caller, id, file)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}
