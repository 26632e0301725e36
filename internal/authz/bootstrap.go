package authz

import (
	"fmt"

	"github.com/farm-ledger/internal/constants"
)

// RoleSeed 启动时创建的角色及其默认策略
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 内置角色：viewer 只读全部后台路由，admin 可读写
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleViewer,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleViewer},
			Policies: []Policy{
				{Object: "/admin/purchases/:id/delivery-status", Action: "PATCH"},
				{Object: "/admin/purchases/:id/delivery-status", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 补齐内置角色与策略，不会删除运维手工授予的策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
