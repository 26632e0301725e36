package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/farm-ledger/internal/constants"

	"github.com/redis/go-redis/v9"
)

// DeliveryHistoryCache 供应商交付历史缓存
//
// 每个供应商一个 hash，字段为 limit；另有一个代数计数器，Invalidate 时自增。
// 读取时记下代数，回填时代数不一致则放弃写入，避免事务提交前读到的旧页覆盖失效结果。
type DeliveryHistoryCache struct {
	ttl time.Duration
}

// NewDeliveryHistoryCache 创建历史缓存，ttl 为零或未启用 redis 时不生效
func NewDeliveryHistoryCache(ttl time.Duration) *DeliveryHistoryCache {
	return &DeliveryHistoryCache{ttl: ttl}
}

func (c *DeliveryHistoryCache) Enabled() bool {
	return c != nil && c.ttl > 0 && Enabled()
}

// Load 读取缓存页，并返回读取时的代数供 Store 比对
func (c *DeliveryHistoryCache) Load(ctx context.Context, supplierID uint, limit int, dest interface{}) (int64, bool, error) {
	if !c.Enabled() {
		return 0, false, nil
	}
	pipe := redisClient.Pipeline()
	genCmd := pipe.Get(ctx, BuildKey(supplierHistoryGenerationKey(supplierID)))
	pageCmd := pipe.HGet(ctx, BuildKey(supplierHistoryKey(supplierID)), strconv.Itoa(limit))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, err
	}

	generation, err := genCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, err
	}
	payload, err := pageCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return generation, false, nil
	}
	if err != nil {
		return generation, false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return generation, false, err
	}
	return generation, true, nil
}

// storeIfGenerationScript 仅在代数未变时写入，返回 1 表示已写入
var storeIfGenerationScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current ~= tonumber(ARGV[1]) then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
redis.call("EXPIRE", KEYS[2], ARGV[4])
return 1
`)

// Store 回填缓存页；generation 须为同一次读取时 Load 返回的代数
func (c *DeliveryHistoryCache) Store(ctx context.Context, supplierID uint, limit int, generation int64, value interface{}) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	keys := []string{
		BuildKey(supplierHistoryGenerationKey(supplierID)),
		BuildKey(supplierHistoryKey(supplierID)),
	}
	return storeIfGenerationScript.Run(ctx, redisClient, keys,
		generation, strconv.Itoa(limit), payload, ttlSeconds(c.ttl)).Err()
}

// Invalidate 自增代数并删除该供应商全部缓存页。ttl 为零时同样执行，配置变更后不会残留旧页
func (c *DeliveryHistoryCache) Invalidate(ctx context.Context, supplierID uint) error {
	if c == nil || !Enabled() {
		return nil
	}
	pipe := redisClient.TxPipeline()
	pipe.Incr(ctx, BuildKey(supplierHistoryGenerationKey(supplierID)))
	pipe.Del(ctx, BuildKey(supplierHistoryKey(supplierID)))
	_, err := pipe.Exec(ctx)
	return err
}

func supplierHistoryKey(supplierID uint) string {
	return fmt.Sprintf("%s:%d", constants.DeliveryHistoryCachePrefix, supplierID)
}

func supplierHistoryGenerationKey(supplierID uint) string {
	return supplierHistoryKey(supplierID) + ":gen"
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
