package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config 应用配置，全部来自环境变量（可选 .env）
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	Server   ServerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Shipping ShippingConfig
	Storage  StorageConfig
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// PostgresConfig 数据库连接配置
type PostgresConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"kibanda"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	DBName   string `envconfig:"DB_NAME" default:"kibanda_store"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// DSN 拼接 GORM Postgres 连接串
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// JWTConfig 令牌配置
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"kibanda-secret-change-in-production"`
	TTL    time.Duration `envconfig:"JWT_EXPIRES_IN" default:"168h"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"kibanda-backend"`
}

// AdminConfig 启动时幂等创建的管理员账号
type AdminConfig struct {
	Name     string `envconfig:"ADMIN_NAME" default:"Admin User"`
	Email    string `envconfig:"ADMIN_EMAIL" default:""`
	Password string `envconfig:"ADMIN_PASSWORD" default:""`
}

// ShippingConfig 运费策略：subtotal 超过阈值免运费
type ShippingConfig struct {
	FreeThreshold float64 `envconfig:"SHIPPING_FREE_THRESHOLD" default:"5000"`
	Fee           float64 `envconfig:"SHIPPING_FEE" default:"300"`
}

// StorageConfig 上传文件存储配置
type StorageConfig struct {
	Provider  string `envconfig:"STORAGE_PROVIDER" default:"local"` // "local" | "s3"
	UploadDir string `envconfig:"UPLOAD_DIR" default:"./uploads"`

	// S3 相关
	Bucket    string `envconfig:"AWS_BUCKET" default:""`
	Region    string `envconfig:"AWS_REGION" default:""`
	AccessKey string `envconfig:"AWS_ACCESS_KEY_ID" default:""`
	SecretKey string `envconfig:"AWS_SECRET_ACCESS_KEY" default:""`
	CDNDomain string `envconfig:"AWS_CDN_DOMAIN" default:""`
	BasePath  string `envconfig:"STORAGE_BASE_PATH" default:"kibanda"`
}

// Load 加载配置，.env 不存在时静默忽略
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	return &cfg, nil
}
