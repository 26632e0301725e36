package cache

import (
	"fmt"
	"strings"

	"github.com/farm-ledger/internal/config"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient  *redis.Client
	redisPrefix  string
	redisEnabled bool
)

// InitRedis 初始化 Redis 客户端，未启用时所有操作为空操作
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		redisEnabled = false
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "farm"
	}
	Use(redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), prefix)
	return nil
}

// Use 注入已有客户端
func Use(client *redis.Client, prefix string) {
	redisClient = client
	redisPrefix = prefix
	redisEnabled = client != nil
}

func Enabled() bool {
	return redisEnabled && redisClient != nil
}

func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return redisClient
}

// Close 关闭客户端
func Close() error {
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	redisEnabled = false
	return err
}

// BuildKey 添加配置的键前缀
func BuildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return redisPrefix
	}
	return fmt.Sprintf("%s:%s", redisPrefix, trimmed)
}
