package service

import (
	"strings"

	"github.com/farm-ledger/internal/constants"
)

// AuthContext 调用方身份，每个请求解析一次，写操作均需传入
type AuthContext struct {
	ActorID  uint
	Username string
	Role     string
}

func (a AuthContext) IsAdmin() bool {
	return a.ActorID != 0 && strings.EqualFold(strings.TrimSpace(a.Role), constants.RoleAdmin)
}

// RequireAdmin 非管理员时返回 ErrPermissionDenied
func (a AuthContext) RequireAdmin() error {
	if !a.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}
