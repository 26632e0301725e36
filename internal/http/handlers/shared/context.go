package shared

import (
	"strconv"
	"strings"

	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthContextKey 认证中间件写入调用方身份的键
const AuthContextKey = "auth_context"

// GetAuthContext 获取认证中间件解析出的身份
func GetAuthContext(c *gin.Context) (service.AuthContext, bool) {
	value, ok := c.Get(AuthContextKey)
	if !ok {
		return service.AuthContext{}, false
	}
	auth, ok := value.(service.AuthContext)
	if !ok || auth.ActorID == 0 {
		return service.AuthContext{}, false
	}
	return auth, true
}

// GetRequestID 获取请求 ID
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(response.RequestIDKey)
}

// ParseUintParam 解析正整数路径参数
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
