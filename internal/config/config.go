package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/farm-ledger/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Inventory InventoryConfig `mapstructure:"inventory"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为日志初始化参数
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver             string             `mapstructure:"driver"` // sqlite / postgres
	DSN                string             `mapstructure:"dsn"`
	Pool               DatabasePoolConfig `mapstructure:"pool"`
	StatementTimeoutMS int                `mapstructure:"statement_timeout_ms"`
}

// StatementTimeout 单次存储请求超时，零值表示不限制
func (c DatabaseConfig) StatementTimeout() time.Duration {
	if c.StatementTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.StatementTimeoutMS) * time.Millisecond
}

// JWTConfig 后台令牌配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全防护配置
type SecurityConfig struct {
	StatusRateLimit RateLimitConfig `mapstructure:"status_rate_limit"`
}

// RateLimitConfig 固定窗口限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// DeliveryConfig 交付跟踪与报表配置
type DeliveryConfig struct {
	HistoryDefaultLimit int `mapstructure:"history_default_limit"`
	HistoryMaxLimit     int `mapstructure:"history_max_limit"`
	// 缓存页仅在读取前后失效代数一致时回填，TTL 只决定无写入时页面的保留时长
	HistoryCacheTTLSeconds int `mapstructure:"history_cache_ttl_seconds"`
	ExpiringSoonWindowDays int `mapstructure:"expiring_soon_window_days"`
	// 判断“今天”所用的业务时区（IANA 名称），入库日期始终按 UTC 日历日读取
	BusinessTimezone     string `mapstructure:"business_timezone"`
	NotifyOnStatusChange bool   `mapstructure:"notify_on_status_change"`
}

// BusinessLocation 解析业务时区，空值为 UTC
func (c DeliveryConfig) BusinessLocation() (*time.Location, error) {
	name := strings.TrimSpace(c.BusinessTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid delivery.business_timezone %q: %w", name, err)
	}
	return loc, nil
}

// HistoryCacheTTL 供应商交付历史缓存时长，零值表示关闭缓存
func (c DeliveryConfig) HistoryCacheTTL() time.Duration {
	if c.HistoryCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.HistoryCacheTTLSeconds) * time.Second
}

// InventoryConfig 库存批次配置
type InventoryConfig struct {
	ExpiryScanIntervalMinutes int `mapstructure:"expiry_scan_interval_minutes"`
}

// ExpiryScanInterval 到期扫描周期，零值表示关闭定时扫描
func (c InventoryConfig) ExpiryScanInterval() time.Duration {
	if c.ExpiryScanIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.ExpiryScanIntervalMinutes) * time.Minute
}

// SetDefaults 注册全部默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "farm-ledger.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/farm.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("database.statement_timeout_ms", 5000)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "farm-ledger")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "farm")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PATCH", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept",
		"Accept-Language",
		"Authorization",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.status_rate_limit.window_seconds", 60)
	v.SetDefault("security.status_rate_limit.max_requests", 60)
	v.SetDefault("delivery.history_default_limit", 10)
	v.SetDefault("delivery.history_max_limit", 100)
	v.SetDefault("delivery.history_cache_ttl_seconds", 0)
	v.SetDefault("delivery.expiring_soon_window_days", 30)
	v.SetDefault("delivery.business_timezone", "UTC")
	v.SetDefault("delivery.notify_on_status_change", true)
	v.SetDefault("inventory.expiry_scan_interval_minutes", 60)
}

// Load 加载配置文件，并以 FARM_* 环境变量覆盖
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./")
	v.AddConfigPath("../") // 从 cmd/server 目录运行时
	v.AddConfigPath("./etc")

	SetDefaults(v)

	// 例如 FARM_SERVER_PORT 覆盖 server.port
	v.SetEnvPrefix("FARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg, err := decode(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config decode failed: %w", err))
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Delivery.BusinessLocation(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
