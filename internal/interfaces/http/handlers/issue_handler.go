package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/tracking"
	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// IssueHandler serves the issue CRUD and lifecycle endpoints.
type IssueHandler struct {
	issues *tracking.IssueService
}

func NewIssueHandler(issues *tracking.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

func (h *IssueHandler) Register(r gin.IRoutes) {
	r.POST("/issues", h.create)
	r.GET("/issues", h.list)
	r.GET("/issues/:id", h.get)
	r.PATCH("/issues/:id", h.update)
	r.POST("/issues/:id/start", h.start)
	r.POST("/issues/:id/resolve", h.resolve)
	r.POST("/issues/:id/close", h.close)
	r.POST("/issues/:id/reopen", h.reopen)
	r.DELETE("/issues/:id", h.delete)
}

type createIssueRequest struct {
	ProjectID   common.ID      `json:"project_id" binding:"required"`
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	AssigneeID  *common.UserID `json:"assignee_id"`
	DueDate     *time.Time     `json:"due_date"`
}

type updateIssueRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Priority    *string        `json:"priority"`
	AssigneeID  *common.UserID `json:"assignee_id"`
	DueDate     *time.Time     `json:"due_date"`
	ClearDue    bool           `json:"clear_due"`
}

type resolveIssueRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

func (h *IssueHandler) create(c *gin.Context) {
	var req createIssueRequest
	if !bindJSON(c, &req) {
		return
	}

	is, err := h.issues.Create(c.Request.Context(), middleware.Principal(c), tracking.CreateIssueInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, is)
}

func (h *IssueHandler) list(c *gin.Context) {
	q := parseListQuery(c)
	page := parsePagination(c)

	items, total, err := h.issues.List(c.Request.Context(), middleware.Principal(c), q, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, items, page, total)
}

func (h *IssueHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	is, err := h.issues.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, is)
}

func (h *IssueHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateIssueRequest
	if !bindJSON(c, &req) {
		return
	}

	is, err := h.issues.Update(c.Request.Context(), middleware.Principal(c), id, tracking.UpdateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, is)
}

func (h *IssueHandler) start(c *gin.Context) {
	h.transition(c, h.issues.Start)
}

func (h *IssueHandler) close(c *gin.Context) {
	h.transition(c, h.issues.Close)
}

func (h *IssueHandler) reopen(c *gin.Context) {
	h.transition(c, h.issues.Reopen)
}

func (h *IssueHandler) resolve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req resolveIssueRequest
	if !bindJSON(c, &req) {
		return
	}

	is, err := h.issues.Resolve(c.Request.Context(), middleware.Principal(c), id, req.Resolution)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, is)
}

func (h *IssueHandler) transition(c *gin.Context, fn func(context.Context, *auth.Principal, common.ID) (*issue.Issue, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	is, err := fn(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, is)
}

func (h *IssueHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.issues.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
