// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在环境变量中（YAML 中不存储任何密码）。
//	dev/test 环境可通过 .env.{env} 文件注入，生产环境由 systemd EnvironmentFile= 注入。
//
// 配置路径确定策略：
//  1. --config 命令行参数（显式路径）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：
//     - prod → /etc/house-rent/
//     - dev/test → ./configs/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// 默认值
const (
	DefaultPort       = "5000"
	DefaultTokenTTL   = 30 * 24 * time.Hour
	DefaultListingTTL = 60 * time.Second
	DefaultDBName     = "house_rent"
	DefaultSQLitePath = "./data/house-rent.db"
	devJWTSecret      = "house-rent-dev-secret"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	APIServer APIServerConfig `yaml:"api_server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Booking   BookingConfig   `yaml:"booking"`
	Cache     CacheConfig     `yaml:"cache"`
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "mongodb", "postgres", "sqlite" 或 "memory"（默认 mongodb）
	URI      string `yaml:"uri"`    // MongoDB 连接 URI（优先于 host/port）
	Path     string `yaml:"path"`   // SQLite 文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 DB_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	// FallbackToFixture 数据库不可达时是否降级到内存示例数据；未设置时非生产环境默认开启
	FallbackToFixture *bool `yaml:"fallback_to_fixture"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"` // 直接指定 URL（优先于 host/port/db）
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"` // 只从 REDIS_PASSWORD 环境变量读取
}

// AuthConfig 认证配置
// 注意：JWTSecret/Admin* 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret     string `yaml:"-"`         // JWT_SECRET
	TokenTTL      string `yaml:"token_ttl"` // 例如 "720h"、"30d"；JWT_EXPIRE 可覆盖
	AdminEmail    string `yaml:"-"`         // ADMIN_EMAIL
	AdminPassword string `yaml:"-"`         // ADMIN_PASSWORD
	AdminName     string `yaml:"-"`         // ADMIN_NAME
}

// BookingConfig 预约配置
type BookingConfig struct {
	// StrictTransitions 开启后禁止离开终态（approved/rejected/cancelled）
	StrictTransitions bool `yaml:"strict_transitions"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	ListingTTL time.Duration `yaml:"listing_ttl"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env               Environment
	APIPort           string
	DatabaseDriver    string
	DatabaseURL       string
	DatabaseName      string // MongoDB 数据库名称
	FallbackToFixture bool
	RedisEnabled      bool
	RedisURL          string
	Auth              AuthConfig
	TokenTTL          time.Duration
	Booking           BookingConfig
	Cache             CacheConfig
	ConfigFilePath    string // 实际加载的配置文件路径
}

// yamlConfigInternal 内部包装，记录配置文件来源
type yamlConfigInternal struct {
	YAMLConfig `yaml:",inline"`
	loadedFrom string
}
