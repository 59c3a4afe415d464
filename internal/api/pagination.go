package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/expotoworld/programs-service/internal/db"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errInvalidPage = errors.New("invalid page")

// pageRequest is the parsed page/page_size query.
type pageRequest struct {
	Page int
	Size int
}

func parsePage(c *gin.Context) (pageRequest, error) {
	req := pageRequest{Page: 1, Size: defaultPageSize}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, errInvalidPage
		}
		req.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.Size = n
		}
	}
	if req.Size > maxPageSize {
		req.Size = maxPageSize
	}
	return req, nil
}

func (p pageRequest) window() db.Pagination {
	return db.Pagination{Limit: p.Size, Offset: (p.Page - 1) * p.Size}
}

// paginated renders {count, next, previous, results}. Pages past the end are
// 404 except for the first page of an empty set.
func paginated[T any](c *gin.Context, p pageRequest, count int, results []T) {
	if p.Page > 1 && (p.Page-1)*p.Size >= count {
		renderInvalidPage(c)
		return
	}
	var next, previous interface{}
	if p.Page*p.Size < count {
		next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		previous = pageURL(c, p.Page-1)
	}
	if results == nil {
		results = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func renderInvalidPage(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
}

func pageURL(c *gin.Context, page int) string {
	u := url.URL{Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u.Scheme = scheme
	u.Host = c.Request.Host
	return u.String()
}
