package admin

import (
	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

func getAuthContext(c *gin.Context) (service.AuthContext, bool) {
	auth, ok := handlershared.GetAuthContext(c)
	if !ok {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.AuthContext{}, false
	}
	return auth, true
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return 0, false
	}
	return id, true
}
