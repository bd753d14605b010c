package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/accounts"
)

// AuthHandler serves the unauthenticated login endpoint.
type AuthHandler struct {
	accounts *accounts.Service
}

func NewAuthHandler(accounts *accounts.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Register(r gin.IRoutes) {
	r.POST("/auth/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
