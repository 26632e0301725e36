package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 计算请求所属的限流桶
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则：每 WindowSeconds 最多 MaxRequests 次
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) bucket(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if r.Prefix == "" {
		return key
	}
	return r.Prefix + ":" + key
}

func (r RateLimitRule) messageKey() string {
	if key := strings.TrimSpace(r.MessageKey); key != "" {
		return key
	}
	return "error.rate_limited"
}

// fixedWindowScript 返回 {hits, ttl}，首次命中开启窗口
var fixedWindowScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("TTL", KEYS[1])}
`)

// RateLimitMiddleware Redis 固定窗口限流中间件。客户端为空或规则为零值时放行；
// Redis 不可用时拒绝请求
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if client == nil || !rule.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := rule.bucket(c, keyFunc)
		locale := i18n.ResolveLocale(c)

		hits, ttl, err := countHit(c.Request.Context(), client, key, rule.WindowSeconds)
		if err != nil {
			handlershared.RequestLog(c).Warnw("rate_limit_unavailable", "bucket", key, "error", err)
			response.Error(c, response.CodeInternal, i18n.T(locale, "error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if hits > int64(rule.MaxRequests) {
			wait := retryAfterSeconds(ttl, rule.WindowSeconds)
			handlershared.RequestLog(c).Infow("rate_limit_exceeded", "bucket", key, "hits", hits, "retry_after", wait)
			c.Header("Retry-After", strconv.Itoa(wait))
			response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(locale, rule.messageKey(), wait))
			c.Abort()
			return
		}
		c.Next()
	}
}

func countHit(ctx context.Context, client *redis.Client, key string, windowSeconds int) (int64, int64, error) {
	reply, err := fixedWindowScript.Run(ctx, client, []string{key}, windowSeconds).Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(reply) < 2 {
		return 0, 0, fmt.Errorf("unexpected limiter reply %v", reply)
	}
	hits, ok := toInt64(reply[0])
	if !ok {
		return 0, 0, fmt.Errorf("unexpected hit count %v", reply[0])
	}
	ttl, _ := toInt64(reply[1])
	return hits, ttl, nil
}

// retryAfterSeconds 优先使用剩余 TTL，否则使用完整窗口
func retryAfterSeconds(ttl int64, windowSeconds int) int {
	switch {
	case ttl >= 1:
		return int(ttl)
	case windowSeconds >= 1:
		return windowSeconds
	default:
		return 1
	}
}

// KeyByActor 按登录用户分桶，未认证时按客户端 IP
func KeyByActor(c *gin.Context) string {
	if auth, ok := handlershared.GetAuthContext(c); ok {
		return fmt.Sprintf("actor:%d", auth.ActorID)
	}
	return c.ClientIP()
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
