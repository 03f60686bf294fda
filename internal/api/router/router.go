package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanryp/servicedesk-sub002/internal/api/handler"
	"github.com/yanryp/servicedesk-sub002/internal/api/middleware"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

// Handlers 路由依赖的全部handler
type Handlers struct {
	Auth       *handler.AuthHandler
	Catalog    *handler.CatalogHandler
	MasterData *handler.MasterDataHandler
	Ticket     *handler.TicketHandler
	User       *handler.UserHandler
}

// Setup 组装路由
func Setup(mode string, authService *service.AuthService, h Handlers) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, model.Success(gin.H{"status": "ok"}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/login", h.Auth.Login)

	api := r.Group("/api")
	api.Use(middleware.JWTAuth(authService))
	{
		catalogs := api.Group("/catalogs")
		{
			catalogs.GET("", h.Catalog.ListCatalogs)
			catalogs.GET("/:id/items", h.Catalog.ListItems)
		}

		catalog := api.Group("/catalog")
		{
			catalog.GET("/items/:id", h.Catalog.GetItem)
			catalog.GET("/items/:id/templates", h.Catalog.ListTemplates)
			catalog.GET("/items/:id/fields", h.Catalog.ListItemFields)
		}

		masterData := api.Group("/master-data")
		{
			masterData.GET("/types", h.MasterData.ListDataTypes)
			masterData.GET("/entries/:dataType", h.MasterData.ListEntries)
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("", h.Ticket.CreateTicket)
			tickets.GET("", h.Ticket.ListTickets)
			tickets.GET("/:id", h.Ticket.GetTicket)
			tickets.GET("/:id/logs", h.Ticket.GetStatusLogs)
			tickets.POST("/:id/approve", h.Ticket.Approve)
			tickets.POST("/:id/reject", h.Ticket.Reject)
			tickets.POST("/:id/transition", h.Ticket.Transition)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole(model.RoleAdmin))
		{
			admin.POST("/catalogs", h.Catalog.CreateCatalog)
			admin.PUT("/catalogs/:id", h.Catalog.UpdateCatalog)
			admin.DELETE("/catalogs/:id", h.Catalog.DeleteCatalog)

			admin.POST("/items", h.Catalog.CreateItem)
			admin.PUT("/items/:id", h.Catalog.UpdateItem)
			admin.DELETE("/items/:id", h.Catalog.DeleteItem)

			admin.POST("/templates", h.Catalog.CreateTemplate)
			admin.PUT("/templates/:id", h.Catalog.UpdateTemplate)
			admin.DELETE("/templates/:id", h.Catalog.DeleteTemplate)

			admin.GET("/fields", h.Catalog.ListFields)
			admin.POST("/fields", h.Catalog.CreateField)
			admin.PUT("/fields/:id", h.Catalog.UpdateField)
			admin.POST("/fields/:id/deprecate", h.Catalog.DeprecateField)

			admin.GET("/users", h.User.ListUsers)
			admin.POST("/users", h.User.CreateUser)
			admin.PUT("/users/:id", h.User.UpdateUser)
		}
	}

	return r
}
