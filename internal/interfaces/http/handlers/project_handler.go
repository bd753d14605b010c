package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/collab"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// ProjectHandler serves project CRUD, rosters, and permission matrices.
type ProjectHandler struct {
	projects *collab.ProjectService
}

func NewProjectHandler(projects *collab.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) Register(r gin.IRoutes) {
	r.POST("/projects", h.create)
	r.GET("/projects", h.list)
	r.GET("/projects/:id", h.get)
	r.PATCH("/projects/:id", h.update)
	r.GET("/projects/:id/members", h.listMembers)
	r.POST("/projects/:id/members", h.addMember)
	r.DELETE("/projects/:id/members/:userID", h.removeMember)
	r.GET("/projects/:id/permissions", h.getPermissions)
	r.PUT("/projects/:id/permissions", h.putPermissions)
}

type createProjectRequest struct {
	Code        string     `json:"code" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type updateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type addMemberRequest struct {
	UserID common.UserID `json:"user_id" binding:"required"`
	Role   string        `json:"role" binding:"required"`
}

type putPermissionsRequest struct {
	Grid map[string]map[string]bool `json:"grid" binding:"required"`
}

func (h *ProjectHandler) create(c *gin.Context) {
	var req createProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.projects.Create(c.Request.Context(), middleware.Principal(c), collab.CreateProjectInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, p)
}

func (h *ProjectHandler) list(c *gin.Context) {
	page := parsePagination(c)
	items, total, err := h.projects.List(c.Request.Context(), middleware.Principal(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, items, page, total)
}

func (h *ProjectHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

func (h *ProjectHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.projects.Update(c.Request.Context(), middleware.Principal(c), id, collab.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

func (h *ProjectHandler) listMembers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	members, err := h.projects.ListMembers(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, members)
}

func (h *ProjectHandler) addMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.projects.AddMember(c.Request.Context(), middleware.Principal(c), id, req.UserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, m)
}

func (h *ProjectHandler) removeMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID := common.UserID(c.Param("userID"))
	if err := h.projects.RemoveMember(c.Request.Context(), middleware.Principal(c), id, userID); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}

func (h *ProjectHandler) getPermissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.projects.GetPermissions(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, m)
}

func (h *ProjectHandler) putPermissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req putPermissionsRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.projects.PutPermissions(c.Request.Context(), middleware.Principal(c), id, req.Grid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, m)
}
