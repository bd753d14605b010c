package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/collab"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// DocumentHandler serves document descriptors and presigned transfer URLs.
type DocumentHandler struct {
	documents *collab.DocumentService
}

func NewDocumentHandler(documents *collab.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

func (h *DocumentHandler) Register(r gin.IRoutes) {
	r.POST("/documents", h.requestUpload)
	r.GET("/documents", h.list)
	r.GET("/documents/:id/download", h.download)
	r.DELETE("/documents/:id", h.delete)
}

type uploadRequest struct {
	ProjectID   common.ID `json:"project_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	ContentType string    `json:"content_type" binding:"required"`
	SizeBytes   int64     `json:"size_bytes"`
}

type downloadResponse struct {
	DownloadURL string `json:"download_url"`
}

func (h *DocumentHandler) requestUpload(c *gin.Context) {
	var req uploadRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.documents.RequestUpload(c.Request.Context(), middleware.Principal(c), collab.UploadInput{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, ticket)
}

func (h *DocumentHandler) list(c *gin.Context) {
	projectID := strings.TrimSpace(c.Query("project_id"))
	if projectID == "" {
		respondError(c, errors.InvalidParam("project_id is required"))
		return
	}
	page := parsePagination(c)

	docs, total, err := h.documents.List(c.Request.Context(), middleware.Principal(c), common.ID(projectID), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, docs, page, total)
}

func (h *DocumentHandler) download(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.documents.DownloadURL(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, downloadResponse{DownloadURL: url})
}

func (h *DocumentHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
