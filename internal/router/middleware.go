package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/farm-ledger/internal/authz"
	"github.com/farm-ledger/internal/config"
	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/i18n"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Language",
			"Authorization",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			// 携带凭证时不能使用通配符，回显请求来源
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 复用 X-Request-ID 或生成新的请求 ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", handlershared.GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if auth, ok := handlershared.GetAuthContext(c); ok {
			fields = append(fields, "actor_id", auth.ActorID)
		}
		entry := sugar.With(fields...)
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Error(c, response.CodeUnauthorized, msg)
	c.Abort()
}

// JWTAuthMiddleware 解析 Bearer Token；表单路由也可通过 access_token Cookie 携带
func JWTAuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		tokenString, key := bearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, key)
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			if errors.Is(err, service.ErrTokenSecretMissing) {
				logger.Errorw("jwt_secret_missing")
				abortUnauthorized(c, "error.jwt_secret_missing")
				return
			}
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		c.Set(handlershared.AuthContextKey, claims.AuthContext())
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, string) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		if cookie, err := c.Cookie("access_token"); err == nil && strings.TrimSpace(cookie) != "" {
			return strings.TrimSpace(cookie), ""
		}
		return "", "error.auth_header_missing"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "error.auth_header_invalid"
	}
	return strings.TrimSpace(parts[1]), ""
}

// AdminRBACMiddleware 后台路由权限校验
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		auth, ok := handlershared.GetAuthContext(c)
		if !ok {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.Allows(auth.Role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"actor_id", auth.ActorID,
				"role", auth.Role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"actor_id", auth.ActorID,
				"role", auth.Role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			msg := i18n.T(i18n.ResolveLocale(c), "error.forbidden")
			response.Error(c, response.CodeForbidden, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}
