package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

// respondError 将服务层错误分类映射为HTTP响应
// 校验失败单独处理，携带完整的字段错误列表
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationFailedError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, model.Response{
			Code:    http.StatusBadRequest,
			Message: "validation failed",
			Data:    gin.H{"field_errors": verr.Errors},
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		model.HandleError(c, http.StatusNotFound, err)
	case errors.Is(err, service.ErrUnauthorized):
		model.HandleError(c, http.StatusForbidden, err)
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrSchemaConflict):
		model.HandleError(c, http.StatusConflict, err)
	case errors.Is(err, service.ErrInvalidArgument):
		model.HandleError(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		model.HandleError(c, http.StatusUnauthorized, err)
	default:
		model.HandleError(c, http.StatusInternalServerError, err)
	}
}
