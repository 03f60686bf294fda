package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"go.uber.org/zap"
)

// Recovery panic恢复中间件，记录堆栈并返回500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("请求处理panic",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				c.JSON(http.StatusInternalServerError,
					model.Error(http.StatusInternalServerError, "internal server error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}
