package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/api/handler"
	"github.com/yanryp/servicedesk-sub002/internal/api/router"
	"github.com/yanryp/servicedesk-sub002/internal/notification"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"github.com/yanryp/servicedesk-sub002/internal/service"
	"github.com/yanryp/servicedesk-sub002/pkg/config"
	"github.com/yanryp/servicedesk-sub002/pkg/database"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"github.com/yanryp/servicedesk-sub002/pkg/redis"
)

// App 应用实例，持有配置和组装完成的路由
type App struct {
	Config *config.Config
	Engine *gin.Engine
}

// Initialize 按 配置 -> 日志 -> 数据库 -> Redis -> 业务组件 的顺序完成初始化
func Initialize(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Redis连接失败不阻塞启动，幂等检查退回数据库唯一索引
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warnf("Redis init failed, falling back to database mode: %v", err)
	}

	// 仓储层
	userRepo := repository.NewUserRepository(database.DB)
	catalogRepo := repository.NewCatalogRepository(database.DB)
	fieldRepo := repository.NewFieldDefinitionRepository(database.DB)
	masterDataRepo := repository.NewMasterDataRepository(database.DB)
	ticketRepo := repository.NewTicketRepository(database.DB)

	// 服务层
	notifyManager := notification.NewManager(&cfg.Notify)
	masterDataService := service.NewMasterDataService(masterDataRepo)
	catalogService := service.NewCatalogService(catalogRepo, fieldRepo, masterDataService)
	intakeService := service.NewIntakeService(ticketRepo, catalogService, fieldRepo, notifyManager)
	workflowService := service.NewWorkflowService(ticketRepo, userRepo, notifyManager)
	authService := service.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
	userService := service.NewUserService(userRepo)

	// API层
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Catalog:    handler.NewCatalogHandler(catalogService),
		MasterData: handler.NewMasterDataHandler(masterDataService),
		Ticket:     handler.NewTicketHandler(intakeService, workflowService),
		User:       handler.NewUserHandler(userService),
	}

	mode := cfg.Server.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	engine := router.Setup(mode, authService, handlers)

	return &App{Config: cfg, Engine: engine}, nil
}
