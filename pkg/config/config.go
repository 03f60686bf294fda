package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Notify   NotifyConfig   `yaml:"notify"`
}

type ServerConfig struct {
	APIPort int    `yaml:"api_port"`
	Mode    string `yaml:"mode"` // debug / release
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // 数据库驱动: mysql, postgres (默认: mysql)
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	// Enabled 是否启用Redis
	// - true: 启用Redis，工单提交的幂等键走Redis快速路径
	// - false: 禁用Redis，仅依赖数据库唯一索引做幂等检查
	Enabled bool `yaml:"enabled"`

	// Host Redis服务器地址（仅在enabled=true时有效）
	Host string `yaml:"host"`

	// Port Redis服务器端口（仅在enabled=true时有效）
	Port int `yaml:"port"`

	// Password Redis密码（可选，如果Redis未设置密码则留空）
	Password string `yaml:"password"`

	// DB Redis数据库编号（默认0）
	DB int `yaml:"db"`

	// ConnectTimeout 连接超时时间（秒，默认5秒）
	ConnectTimeout int `yaml:"connect_timeout"`

	// ReadTimeout 读取超时时间（秒，默认3秒）
	ReadTimeout int `yaml:"read_timeout"`

	// WriteTimeout 写入超时时间（秒，默认3秒）
	WriteTimeout int `yaml:"write_timeout"`

	// PoolSize 连接池大小（默认10）
	PoolSize int `yaml:"pool_size"`

	// MinIdleConns 最小空闲连接数（默认5）
	MinIdleConns int `yaml:"min_idle_conns"`
}

// Validate 验证Redis配置
func (c *RedisConfig) Validate() error {
	if !c.Enabled {
		return nil // Redis未启用，无需验证
	}

	if c.Host == "" {
		return fmt.Errorf("redis host is required when enabled=true")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", c.Port)
	}

	return nil
}

// SetDefaults 设置默认值
func (c *RedisConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 5
	}
}

type SecurityConfig struct {
	// JWTSecret JWT签名密钥（建议64字节或更长，更安全）
	JWTSecret string `yaml:"jwt_secret"`

	// SessionTimeout 会话超时时间（秒）
	SessionTimeout int `yaml:"session_timeout"`
}

// SetDefaults 设置安全配置的默认值
func (c *SecurityConfig) SetDefaults() {
	if c.JWTSecret == "" {
		// 默认JWT密钥，仅用于开发环境，生产环境必须修改为强随机字符串
		c.JWTSecret = "q3XhZ1u4K9dLr+8sV0wYbT5mC2nE7gJfPaRiUoHxMeW6kDyQvBzNlFtScGjAO"
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = 86400
	}
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug / info / warn / error
	Output string `yaml:"output"` // console / file / both
	File   string `yaml:"file"`   // 日志文件路径
}

type NotifyConfig struct {
	// Enabled 是否启用事件通知（工单创建/审批决定/状态变更事件推送给通知/SLA服务）
	Enabled bool `yaml:"enabled"`

	// WebhookURL 通知/SLA服务的回调地址
	WebhookURL string `yaml:"webhook_url"`

	// Secret 签名密钥，推送时使用HMAC-SHA256对payload签名
	Secret string `yaml:"secret"`

	// Timeout 推送超时时间（秒，默认5秒）
	Timeout int `yaml:"timeout"`
}

// SetDefaults 设置通知配置的默认值
func (c *NotifyConfig) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 5
	}
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 设置默认值
	config.Database.SetDefaults()
	config.Redis.SetDefaults()
	config.Security.SetDefaults()
	config.Notify.SetDefaults()

	// 支持通过环境变量覆盖数据库配置（Docker 部署时使用）
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = port
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		config.Database.Password = dbPassword
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		config.Database.DBName = dbName
	}

	config.Database.SetDefaults()

	// 支持通过环境变量覆盖Redis配置
	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		if enabled, err := strconv.ParseBool(redisEnabled); err == nil {
			config.Redis.Enabled = enabled
		}
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		config.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if port, err := strconv.Atoi(redisPort); err == nil {
			config.Redis.Port = port
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}

	// 重新设置Redis默认值（环境变量可能覆盖了某些值）
	config.Redis.SetDefaults()

	// 重新验证Redis配置
	if err := config.Redis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}

	GlobalConfig = &config
	return &config, nil
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" || c.Driver == "postgresql" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.DBName)
	}
	// 默认 MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// SetDefaults 设置默认值
func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 100
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 3600 // 1 hour
	}
}
