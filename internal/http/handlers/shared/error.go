package shared

import (
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/i18n"
	"github.com/farm-ledger/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 获取带请求 ID 的日志
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if id := GetRequestID(c); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回本地化错误响应，err 仅写入日志
func RespondError(c *gin.Context, code int, key string, err error, args ...interface{}) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	if len(args) > 0 {
		msg = i18n.Sprintf(locale, key, args...)
	}
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}
