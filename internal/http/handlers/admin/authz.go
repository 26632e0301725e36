package admin

import (
	"github.com/farm-ledger/internal/authz"
	"github.com/farm-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

var authzErrorRules = []mappedHandlerError{
	{target: authz.ErrRoleRequired, code: response.CodeBadRequest, key: "error.bad_request"},
}

// GetAuthzMe GET /api/v1/admin/authz/me
// 获取当前用户的有效权限（含继承）
func (h *Handler) GetAuthzMe(c *gin.Context) {
	auth, ok := getAuthContext(c)
	if !ok {
		return
	}
	role, err := authz.NormalizeRole(auth.Role)
	if err != nil {
		respondError(c, response.CodeForbidden, "error.forbidden", nil)
		return
	}
	policies, err := h.AuthzService.EffectivePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"actor_id": auth.ActorID,
		"username": auth.Username,
		"role":     role,
		"policies": policies,
	})
}

// ListAuthzRoles GET /api/v1/admin/authz/roles
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies GET /api/v1/admin/authz/roles/:role/policies
// ?effective=true 时包含继承自父角色的权限
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := c.Param("role")
	lookup := h.AuthzService.RolePolicies
	if effective := c.Query("effective"); effective == "true" || effective == "1" {
		lookup = h.AuthzService.EffectivePolicies
	}
	policies, err := lookup(role)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"role":     role,
		"policies": policies,
	})
}
