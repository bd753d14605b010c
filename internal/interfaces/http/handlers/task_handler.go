package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/tracking"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// TaskHandler serves the task CRUD and lifecycle endpoints.
type TaskHandler struct {
	tasks *tracking.TaskService
}

func NewTaskHandler(tasks *tracking.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Register(r gin.IRoutes) {
	r.POST("/tasks", h.create)
	r.GET("/tasks", h.list)
	r.GET("/tasks/:id", h.get)
	r.PATCH("/tasks/:id", h.update)
	r.POST("/tasks/:id/complete", h.complete)
	r.POST("/tasks/:id/cancel", h.cancel)
	r.DELETE("/tasks/:id", h.delete)
}

type createTaskRequest struct {
	ProjectID   common.ID      `json:"project_id" binding:"required"`
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Priority    string         `json:"priority"`
	AssigneeID  *common.UserID `json:"assignee_id"`
	DueDate     *time.Time     `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Category    *string        `json:"category"`
	Priority    *string        `json:"priority"`
	AssigneeID  *common.UserID `json:"assignee_id"`
	DueDate     *time.Time     `json:"due_date"`
	ClearDue    bool           `json:"clear_due"`
	Progress    *int           `json:"progress"`
}

func (h *TaskHandler) create(c *gin.Context) {
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.tasks.Create(c.Request.Context(), middleware.Principal(c), tracking.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, t)
}

func (h *TaskHandler) list(c *gin.Context) {
	q := parseListQuery(c)
	page := parsePagination(c)

	items, total, err := h.tasks.List(c.Request.Context(), middleware.Principal(c), q, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, items, page, total)
}

func (h *TaskHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.tasks.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, t)
}

func (h *TaskHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.tasks.Update(c.Request.Context(), middleware.Principal(c), id, tracking.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
		Progress:    req.Progress,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, t)
}

func (h *TaskHandler) complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.tasks.Complete(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, t)
}

func (h *TaskHandler) cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.tasks.Cancel(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, t)
}

func (h *TaskHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
