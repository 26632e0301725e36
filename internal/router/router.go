package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/farm-ledger/internal/authz"
	"github.com/farm-ledger/internal/cache"
	"github.com/farm-ledger/internal/config"
	adminhandlers "github.com/farm-ledger/internal/http/handlers/admin"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/i18n"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 注册路由：/api/v1/admin 下为 JSON 接口，/admin 下为表单提交
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "farm"
	}
	statusRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:delivery_status", redisPrefix),
		WindowSeconds: cfg.Security.StatusRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.StatusRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	statusLimiter := RateLimitMiddleware(cache.Client(), statusRule, KeyByActor)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(c.TokenService), AdminRBACMiddleware(c.AuthzService))
		{
			admin.GET("/purchases/:id", adminHandler.GetPurchase)
			admin.GET("/purchases/:id/tracking", adminHandler.GetPurchaseTracking)
			admin.PATCH("/purchases/:id/delivery-status", statusLimiter, adminHandler.UpdateDeliveryStatus)
			admin.GET("/suppliers/:id/delivery-history", adminHandler.GetSupplierDeliveryHistory)
			admin.GET("/inventory/batches/expiry", adminHandler.GetBatchExpiryReport)

			admin.GET("/authz/me", adminHandler.GetAuthzMe)
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 服务端渲染页面的表单提交，响应为重定向
	forms := r.Group("/admin")
	forms.Use(JWTAuthMiddleware(c.TokenService), AdminRBACMiddleware(c.AuthzService))
	{
		forms.POST("/purchases/:id/delivery-status", statusLimiter, adminHandler.SubmitDeliveryStatusForm)
	}

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})
	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, response.CodeNotFound, i18n.T(i18n.ResolveLocale(ctx), "error.not_found"))
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 列出可授权的后台路由，JSON 与表单路由合并为同一对象
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") && !strings.HasPrefix(item.Path, "/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
