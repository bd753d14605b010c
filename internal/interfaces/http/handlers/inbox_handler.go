package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/inbox"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
)

// InboxHandler serves the in-app notification inbox.
type InboxHandler struct {
	inbox *inbox.Service
}

func NewInboxHandler(svc *inbox.Service) *InboxHandler {
	return &InboxHandler{inbox: svc}
}

func (h *InboxHandler) Register(r gin.IRoutes) {
	// Static segments and the :id wildcard cannot share a position in gin's
	// route tree, so the aggregate endpoints live beside /notifications.
	r.GET("/inbox/notifications", h.list)
	r.GET("/inbox/unread_count", h.countUnread)
	r.POST("/inbox/notifications/:id/read", h.markRead)
	r.POST("/inbox/read_all", h.markAllRead)
}

type unreadCountResponse struct {
	Unread int64 `json:"unread"`
}

func (h *InboxHandler) list(c *gin.Context) {
	unreadOnly := boolQuery(c, "unread")
	page := parsePagination(c)

	items, total, err := h.inbox.List(c.Request.Context(), middleware.Principal(c), unreadOnly, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, items, page, total)
}

func (h *InboxHandler) countUnread(c *gin.Context) {
	n, err := h.inbox.CountUnread(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, unreadCountResponse{Unread: n})
}

func (h *InboxHandler) markRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}

func (h *InboxHandler) markAllRead(c *gin.Context) {
	if err := h.inbox.MarkAllRead(c.Request.Context(), middleware.Principal(c)); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
