package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

// UserHandler 用户管理接口（管理员）
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers 查询全部用户
// GET /api/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(users))
}

// CreateUser 创建用户
// POST /api/admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的用户数据")
		return
	}
	user, err := h.userService.CreateUser(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Success(user))
}

// UpdateUser 更新用户的组织与权限属性
// PUT /api/admin/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的用户数据")
		return
	}
	user, err := h.userService.UpdateUser(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(user))
}
