package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/pkg/config"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDatabase 初始化数据库（支持 MySQL 和 PostgreSQL）
func InitDatabase(cfg *config.DatabaseConfig) error {
	var err error
	var dialector gorm.Dialector

	// 根据配置选择数据库驱动
	switch cfg.Driver {
	case "postgres", "postgresql":
		// PostgreSQL: 先创建数据库（如果不存在）
		if err := createPostgresDatabase(cfg); err != nil {
			return fmt.Errorf("failed to create PostgreSQL database: %w", err)
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
		dialector = postgres.Open(dsn)
	case "mysql", "":
		// MySQL: 先创建数据库（如果不存在）
		if err := createMySQLDatabase(cfg); err != nil {
			return fmt.Errorf("failed to create MySQL database: %w", err)
		}
		dialector = mysql.Open(cfg.DSN())
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", cfg.Driver)
	}

	logger.Infof("Connecting to %s database...", cfg.Driver)

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})

	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 100
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 10
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 3600
	}
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	logger.Infof("Database connection pool configured: MaxOpenConns=%d, MaxIdleConns=%d, ConnMaxLifetime=%ds",
		maxOpenConns, maxIdleConns, connMaxLifetime)

	// 立即 Ping 数据库以确保连接可用
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Database connection verified successfully")
	return nil
}

// createMySQLDatabase 创建 MySQL 数据库（如果不存在）
// 使用 database/sql 而不是 GORM，避免影响主连接
func createMySQLDatabase(cfg *config.DatabaseConfig) error {
	dsnWithoutDB := fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port)

	db, err := sql.Open("mysql", dsnWithoutDB)
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL server: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Second)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping MySQL server: %w", err)
	}

	createDBSQL := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.DBName)
	if _, err := db.Exec(createDBSQL); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	logger.Infof("Database '%s' created or already exists", cfg.DBName)
	return nil
}

// createPostgresDatabase 创建 PostgreSQL 数据库（如果不存在）
func createPostgresDatabase(cfg *config.DatabaseConfig) error {
	dsnPostgres := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password)

	db, err := sql.Open("postgres", dsnPostgres)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Second)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	// 检查数据库是否已存在
	var count int64
	checkSQL := "SELECT COUNT(*) FROM pg_database WHERE datname = $1"
	if err := db.QueryRow(checkSQL, cfg.DBName).Scan(&count); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if count == 0 {
		createDBSQL := fmt.Sprintf("CREATE DATABASE %s", cfg.DBName)
		if _, err := db.Exec(createDBSQL); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		logger.Infof("Database '%s' created successfully", cfg.DBName)
	} else {
		logger.Infof("Database '%s' already exists", cfg.DBName)
	}

	return nil
}

// CheckTableExists 检查表是否存在
func CheckTableExists(tableName string) (bool, error) {
	if DB == nil {
		return false, fmt.Errorf("database connection is not initialized")
	}

	var count int64
	var err error

	if DB.Dialector.Name() == "postgres" {
		err = DB.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", tableName).Scan(&count).Error
	} else {
		// MySQL
		err = DB.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?", tableName).Scan(&count).Error
	}

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// AutoMigrateAll 自动迁移所有表（仅在表不存在时创建）
func AutoMigrateAll() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Checking database tables...")

	tables := []interface{}{
		&model.User{},
		&model.Catalog{},
		&model.Item{},
		&model.Template{},
		&model.FieldDefinition{},
		&model.MasterDataEntry{},
		&model.Ticket{},
		&model.TicketFieldValue{},
		&model.BusinessApproval{},
		&model.TicketStatusLog{},
	}

	// 检查每个表是否存在，只迁移不存在的表
	var tablesToMigrate []interface{}
	for _, table := range tables {
		stmt := &gorm.Statement{DB: DB}
		if err := stmt.Parse(table); err != nil {
			logger.Warnf("Failed to parse table model: %v", err)
			continue
		}
		tableName := stmt.Schema.Table
		exists, err := CheckTableExists(tableName)
		if err != nil {
			logger.Warnf("Failed to check table %s: %v", tableName, err)
			tablesToMigrate = append(tablesToMigrate, table)
			continue
		}
		if !exists {
			logger.Infof("Table %s does not exist, will be created", tableName)
			tablesToMigrate = append(tablesToMigrate, table)
		} else {
			logger.Debugf("Table %s already exists, skipping", tableName)
		}
	}

	if len(tablesToMigrate) == 0 {
		logger.Info("All database tables already exist, no migration needed")
		return nil
	}

	logger.Infof("Starting auto-migration for %d table(s)...", len(tablesToMigrate))
	if err := DB.AutoMigrate(tablesToMigrate...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Infof("Successfully migrated %d table(s)", len(tablesToMigrate))

	// 创建默认数据
	if err := createDefaultData(); err != nil {
		logger.Warnf("Failed to create default data: %v", err)
		// 不返回错误，表已经创建成功，默认数据可以后续手动创建
	}

	return nil
}

// createDefaultData 创建默认数据（管理员用户、示例主数据）
func createDefaultData() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Creating default data...")

	if err := createDefaultAdmin(); err != nil {
		logger.Warnf("Failed to create default admin: %v", err)
	}

	if err := createDefaultMasterData(); err != nil {
		logger.Warnf("Failed to create default master data: %v", err)
	}

	if err := createDefaultCatalog(); err != nil {
		logger.Warnf("Failed to create default catalog: %v", err)
	}

	logger.Info("Default data creation completed")
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin() error {
	var existing model.User
	result := DB.Where("username = ?", "admin").First(&existing)
	if result.Error == nil {
		return nil
	}

	// Password hash for 'admin123'
	defaultUser := model.User{
		ID:       "00000000-0000-0000-0000-000000000001",
		Username: "admin",
		Password: "$2a$10$j/lQBaOvW9dMo/O13g65qeCwYnxuaZerNcB/eA3IZZXxRp4MbePhG", // bcrypt hash of 'admin123'
		FullName: "System Admin",
		Email:    "admin@servicedesk.local",
		Role:     model.RoleAdmin,
		Status:   "active",
	}

	if err := DB.Create(&defaultUser).Error; err != nil {
		return fmt.Errorf("failed to create default user: %w", err)
	}

	logger.Infof("Created default admin user: admin/admin123")
	return nil
}

// createDefaultCatalog 创建示例服务目录（开发环境演示用）
// 包含一个目录、一个带动态字段的服务项
func createDefaultCatalog() error {
	var count int64
	DB.Model(&model.Catalog{}).Count(&count)
	if count > 0 {
		return nil // 已有目录，跳过
	}

	catalog := model.Catalog{
		Name:        "Branch IT Services",
		ServiceType: model.ServiceTypeTechnical,
		Department:  "IT Operations",
		Description: "Branch hardware and application requests",
	}
	if err := DB.Create(&catalog).Error; err != nil {
		return fmt.Errorf("failed to create default catalog: %w", err)
	}

	item := model.Item{
		CatalogID:   catalog.ID,
		Name:        "ATM Terminal Issue",
		RequestType: "incident",
		IsActive:    true,
		SortOrder:   1,
	}
	if err := DB.Create(&item).Error; err != nil {
		return fmt.Errorf("failed to create default item: %w", err)
	}

	fields := []model.FieldDefinition{
		{
			OwnerType:  model.OwnerTypeItem,
			OwnerID:    item.ID,
			FieldName:  "branch",
			FieldLabel: "Branch",
			FieldType:  model.FieldTypeDropdown,
			IsRequired: true,
			SortOrder:  1,
			DataType:   "branch",
		},
		{
			OwnerType:  model.OwnerTypeItem,
			OwnerID:    item.ID,
			FieldName:  "terminal",
			FieldLabel: "Terminal",
			FieldType:  model.FieldTypeDropdown,
			IsRequired: true,
			SortOrder:  2,
			DataType:   "terminal",
		},
		{
			OwnerType:       model.OwnerTypeItem,
			OwnerID:         item.ID,
			FieldName:       "problem_detail",
			FieldLabel:      "Problem Detail",
			FieldType:       model.FieldTypeTextarea,
			IsRequired:      true,
			SortOrder:       3,
			ValidationRules: datatypes.JSON(`{"max_length":2000}`),
		},
	}
	for i := range fields {
		if err := DB.Create(&fields[i]).Error; err != nil {
			logger.Warnf("Failed to create default field %s: %v", fields[i].FieldName, err)
		}
	}

	logger.Infof("Created default catalog '%s' with item '%s'", catalog.Name, item.Name)
	return nil
}

// createDefaultMasterData 创建示例主数据（开发环境演示用）
func createDefaultMasterData() error {
	var count int64
	DB.Model(&model.MasterDataEntry{}).Count(&count)
	if count > 0 {
		return nil // 已有主数据，跳过
	}

	entries := []model.MasterDataEntry{
		{DataType: "branch", Code: "HQ001", DisplayName: "Head Office", IsActive: true, SortOrder: 1},
		{DataType: "branch", Code: "BR002", DisplayName: "Downtown Branch", IsActive: true, SortOrder: 2},
		{DataType: "bank", Code: "BNK01", DisplayName: "Central Bank", IsActive: true, SortOrder: 1},
		{DataType: "terminal", Code: "ATM-0001", DisplayName: "ATM Lobby 1", IsActive: true, SortOrder: 1},
	}

	for _, entry := range entries {
		if err := DB.Create(&entry).Error; err != nil {
			logger.Warnf("Failed to create master data entry %s/%s: %v", entry.DataType, entry.Code, err)
		}
	}

	logger.Infof("Created %d default master data entries", len(entries))
	return nil
}
