// Package handlers holds the gin HTTP handlers. Handlers parse and validate
// transport concerns (JSON bodies, query strings, path params) and delegate
// everything else to the application services.
package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/tracking"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

func respondOK[T any](c *gin.Context, status int, data T) {
	c.JSON(status, common.APIResponse[T]{Success: true, Data: data})
}

func respondPage[T any](c *gin.Context, data []T, page common.Pagination, total int64) {
	page.Total = total
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, common.APIResponse[[]T]{
		Success:    true,
		Data:       data,
		Pagination: &page,
	})
}

func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	detail := &common.ErrorDetail{
		Code:    string(errors.GetCode(err)),
		Message: errors.GetMessage(err),
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		detail.Detail = appErr.Detail
	}
	c.AbortWithStatusJSON(errors.HTTPStatus(err), common.APIResponse[any]{
		Success: false,
		Error:   detail,
	})
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		respondError(c, errors.InvalidParam("invalid request body").WithCause(err))
		return false
	}
	return true
}

// pathID reads a path parameter as a common.ID, rejecting empty values.
func pathID(c *gin.Context, name string) (common.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		respondError(c, errors.InvalidParam("missing path parameter").WithDetail(name))
		return "", false
	}
	return common.ID(raw), true
}

// The *Query helpers below back listing endpoints, where a malformed
// filter or paging parameter degrades to its zero/default value instead
// of failing the request.

func parsePagination(c *gin.Context) common.Pagination {
	page := common.Pagination{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 0),
	}
	page.Normalize()
	return page
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func boolQuery(c *gin.Context, name string) bool {
	b, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return false
	}
	return b
}

func timeQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// csvQuery splits a comma-separated query parameter, dropping empty entries.
func csvQuery(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseListQuery assembles the shared task/issue list parameters from the
// query string. Enum validation happens downstream in the filter builder.
func parseListQuery(c *gin.Context) tracking.ListQuery {
	var q tracking.ListQuery

	if raw := strings.TrimSpace(c.Query("project_id")); raw != "" {
		id := common.ID(raw)
		q.ProjectID = &id
	}
	if raw := strings.TrimSpace(c.Query("assignee_id")); raw != "" {
		id := common.UserID(raw)
		q.AssigneeID = &id
	}
	q.Statuses = csvQuery(c, "status")
	q.Priorities = csvQuery(c, "priority")
	q.Category = c.Query("category")
	q.Search = c.Query("search")
	q.DueFrom = timeQuery(c, "due_from")
	q.DueTo = timeQuery(c, "due_to")
	q.Overdue = boolQuery(c, "overdue")
	q.Upcoming = boolQuery(c, "upcoming")
	return q
}
