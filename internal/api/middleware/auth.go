package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

const (
	// ContextActorKey 上下文中经过认证的操作者
	ContextActorKey = "actor"
	// ContextUserIDKey 上下文中的用户ID（日志用）
	ContextUserIDKey = "user_id"
)

// JWTAuth Bearer Token认证中间件
// 校验通过后将Actor注入上下文，下游handler通过GetActor取用
func JWTAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "invalid authorization header format"))
			c.Abort()
			return
		}

		user, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextActorKey, model.ActorFromUser(user))
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// RequireRole 角色限制中间件，必须挂在JWTAuth之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "authentication required"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, model.Error(http.StatusForbidden, "insufficient permissions"))
		c.Abort()
	}
}

// GetActor 从上下文取出经过认证的操作者
func GetActor(c *gin.Context) (model.Actor, bool) {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return model.Actor{}, false
	}
	actor, ok := value.(model.Actor)
	return actor, ok
}
