package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/accounts"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// UserHandler serves the user directory and account self-service.
type UserHandler struct {
	accounts *accounts.Service
}

func NewUserHandler(svc *accounts.Service) *UserHandler {
	return &UserHandler{accounts: svc}
}

func (h *UserHandler) Register(r gin.IRoutes) {
	r.POST("/users", h.register)
	r.GET("/users", h.list)
	r.GET("/users/:id", h.get)

	// Self-service endpoints live under /account so they cannot collide with
	// the /users/:id wildcard.
	r.PUT("/account/email_notifications", h.setEmailNotifications)
	r.PUT("/account/password", h.changePassword)
}

type registerUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type emailNotificationsRequest struct {
	Enabled bool `json:"enabled"`
}

type changePasswordRequest struct {
	Current string `json:"current" binding:"required"`
	Next    string `json:"next" binding:"required"`
}

func (h *UserHandler) register(c *gin.Context) {
	var req registerUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), middleware.Principal(c), accounts.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, u)
}

func (h *UserHandler) list(c *gin.Context) {
	page := parsePagination(c)
	users, total, err := h.accounts.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, users, page, total)
}

func (h *UserHandler) get(c *gin.Context) {
	raw := c.Param("id")
	u, err := h.accounts.Get(c.Request.Context(), middleware.Principal(c), common.UserID(raw))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, u)
}

func (h *UserHandler) setEmailNotifications(c *gin.Context) {
	var req emailNotificationsRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.accounts.SetEmailNotifications(c.Request.Context(), middleware.Principal(c), req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, u)
}

func (h *UserHandler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), middleware.Principal(c), req.Current, req.Next); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
