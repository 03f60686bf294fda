package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的登录请求")
		return
	}

	resp, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(resp))
}
