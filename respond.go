package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pagination is the envelope block reported by every list endpoint.
type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func newPagination(page, limit int, total int64) pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// parsePagination reads ?page and ?limit, clamping limit to [1, maxLimit].
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// internalError hides store and serialization faults behind a generic 500;
// the detail only goes to the log.
func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.log.Error("internal error", "op", op, "err", err)
	respondError(c, http.StatusInternalServerError, "internal server error")
}
