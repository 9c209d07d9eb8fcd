package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load 加载配置
//  1. 根据 APP_ENV 加载 .env.{env}（敏感信息）
//  2. 加载 {env}.yaml
//  3. 环境变量覆盖，构建最终配置
func Load() (*Config, error) {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)
	// .env 中可能声明了 APP_ENV
	env = parseEnv(getEnv("APP_ENV", string(env)))

	yamlCfg, err := loadYAMLConfig(env)
	if err != nil {
		return nil, err
	}
	return build(env, yamlCfg)
}

// defaultYAMLConfig 代码内置默认值
func defaultYAMLConfig() YAMLConfig {
	return YAMLConfig{
		APIServer: APIServerConfig{Port: DefaultPort},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    27017,
			Name:    DefaultDBName,
			SSLMode: "disable",
		},
		Redis: RedisConfig{Enabled: true, Host: "localhost", Port: 6379, DB: 0},
		Auth:  AuthConfig{TokenTTL: "30d"},
		Cache: CacheConfig{ListingTTL: DefaultListingTTL},
	}
}

// loadYAMLConfig 加载 YAML 配置文件，文件不存在时使用默认值
func loadYAMLConfig(env Environment) (*yamlConfigInternal, error) {
	cfg := &yamlConfigInternal{YAMLConfig: defaultYAMLConfig()}

	path := findConfigFile(env)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg.YAMLConfig); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.loadedFrom = path
	return cfg, nil
}

// build 合并 YAML 与环境变量，得到最终配置
func build(env Environment, y *yamlConfigInternal) (*Config, error) {
	db := y.Database
	db.Password = os.Getenv("DB_PASSWORD")

	redis := y.Redis
	redis.Password = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_URL"); v != "" {
		redis.URL = v
	}

	cfg := &Config{
		Env:            env,
		APIPort:        getEnv("PORT", y.APIServer.Port),
		DatabaseName:   db.Name,
		RedisEnabled:   redis.Enabled,
		RedisURL:       buildRedisURL(redis),
		Booking:        y.Booking,
		Cache:          y.Cache,
		ConfigFilePath: y.loadedFrom,
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = DefaultDBName
	}
	if cfg.Cache.ListingTTL <= 0 {
		cfg.Cache.ListingTTL = DefaultListingTTL
	}

	// 数据库：MONGODB_URI / DATABASE_URL 覆盖 YAML
	databaseURL := os.Getenv("DATABASE_URL")
	if uri := firstEnv("MONGODB_URI", "MONGO_URI"); uri != "" {
		db.URI = uri
		if db.Driver == "" {
			db.Driver = "mongodb"
		}
	}
	cfg.DatabaseDriver = detectDatabaseDriver(db.Driver, databaseURL)
	db.Driver = cfg.DatabaseDriver
	if databaseURL != "" && cfg.DatabaseDriver != "memory" && cfg.DatabaseDriver != "mongodb" {
		cfg.DatabaseURL = databaseURL
	} else {
		cfg.DatabaseURL = buildDatabaseURL(db, db.Password)
	}

	cfg.FallbackToFixture = env != EnvProduction
	if db.FallbackToFixture != nil {
		cfg.FallbackToFixture = *db.FallbackToFixture
	}

	// 认证：密钥与管理员凭据只来自环境变量
	cfg.Auth = AuthConfig{
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getEnv("JWT_EXPIRE", y.Auth.TokenTTL),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
	}
	if cfg.Auth.JWTSecret == "" {
		if env == EnvProduction {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Printf("[config] WARNING: JWT_SECRET not set, using development secret")
		cfg.Auth.JWTSecret = devJWTSecret
	}

	cfg.TokenTTL = DefaultTokenTTL
	if cfg.Auth.TokenTTL != "" {
		ttl, err := parseTTL(cfg.Auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid token ttl: %w", err)
		}
		cfg.TokenTTL = ttl
	}

	if v := os.Getenv("BOOKING_STRICT_TRANSITIONS"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.Booking.StrictTransitions = strict
		}
	}

	return cfg, nil
}
