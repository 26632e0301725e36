package admin

import (
	"errors"

	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error, args ...interface{}) {
	handlershared.RespondError(c, code, key, err, args...)
}

// mappedHandlerError 业务错误到错误码与文案键的映射
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

// respondWithMappedError 按首个匹配的规则响应，未匹配时记录原因并返回兜底错误
func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) && errors.Is(verr.Err, service.ErrMissingRequiredField) {
		respondError(c, response.CodeBadRequest, "error.missing_field", nil, verr.Field)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var readErrorRules = []mappedHandlerError{
	{target: service.ErrPermissionDenied, code: response.CodeForbidden, key: "error.forbidden"},
	{target: service.ErrSupplierNotFound, code: response.CodeNotFound, key: "error.supplier_not_found"},
	{target: service.ErrPurchaseNotFound, code: response.CodeNotFound, key: "error.purchase_not_found"},
}
