package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

var (
	ErrUnavailable  = errors.New("authz service unavailable")
	ErrRoleRequired = errors.New("role is required")
	ErrReservedRole = errors.New("role name is reserved")
)

const (
	apiV1Prefix = "/api/v1"
	policyTable = "casbin_rule"
	rolePrefix  = "role:"

	// 所有角色都挂在锚点下，没有策略的角色也能被 ListRoles 列出
	roleAnchor = "role:__anchor__"
)

// ledgerRBACModel 主体只有角色；对象为去掉 /api/v1 前缀的 gin 路由模式，
// 使用 keyMatch2 匹配 ":id" 段
const ledgerRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy 角色策略，Inherited 表示继承自父角色
type Policy struct {
	Role      string `json:"role"`
	Object    string `json:"object"`
	Action    string `json:"action"`
	Inherited bool   `json:"inherited,omitempty"`
}

// Service 后台权限服务
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", policyTable)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(ledgerRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// Allows 判断角色能否访问路由，route 为 gin FullPath
func (s *Service) Allows(role, route, method string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subject, NormalizeObject(route), NormalizeAction(method))
}

// EnsureRole 注册角色并返回规范化名称
func (s *Service) EnsureRole(role string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if subject == roleAnchor {
		return "", ErrReservedRole
	}
	known, err := s.enforcer.HasNamedGroupingPolicy("g", subject, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("check role failed: %w", err)
	}
	if !known {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, roleAnchor); err != nil {
			return "", fmt.Errorf("register role failed: %w", err)
		}
	}
	return subject, nil
}

// ListRoles 获取全部角色（已排序）
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	links, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 1, roleAnchor)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roles := make([]string, 0, len(links))
	for _, link := range links {
		if len(link) > 0 && strings.HasPrefix(link[0], rolePrefix) {
			roles = append(roles, link[0])
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// RolePolicies 获取角色自身的策略
func (s *Service) RolePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	policies, err := s.directPolicies(subject, false)
	if err != nil {
		return nil, err
	}
	sortPolicies(policies)
	return policies, nil
}

// EffectivePolicies 获取角色的有效策略（含继承）。直接授予与继承重复时只保留直接授予
func (s *Service) EffectivePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}

	chain, err := s.roleChain(subject)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	policies := make([]Policy, 0)
	for i, current := range chain {
		direct, err := s.directPolicies(current, i > 0)
		if err != nil {
			return nil, err
		}
		for _, policy := range direct {
			key := policy.Action + " " + policy.Object
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			policies = append(policies, policy)
		}
	}
	sortPolicies(policies)
	return policies, nil
}

// roleChain 从 subject 开始广度优先遍历父角色
func (s *Service) roleChain(subject string) ([]string, error) {
	chain := []string{subject}
	visited := map[string]struct{}{subject: {}}
	for i := 0; i < len(chain); i++ {
		parents, err := s.enforcer.GetRolesForUser(chain[i])
		if err != nil {
			return nil, fmt.Errorf("resolve parent roles failed: %w", err)
		}
		for _, parent := range parents {
			if parent == roleAnchor {
				continue
			}
			if _, ok := visited[parent]; ok {
				continue
			}
			visited[parent] = struct{}{}
			chain = append(chain, parent)
		}
	}
	return chain, nil
}

func (s *Service) directPolicies(subject string, inherited bool) ([]Policy, error) {
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("load role policies failed: %w", err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Role:      rule[0],
			Object:    NormalizeObject(rule[1]),
			Action:    NormalizeAction(rule[2]),
			Inherited: inherited,
		})
	}
	return policies, nil
}

func sortPolicies(policies []Policy) {
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object != policies[j].Object {
			return policies[i].Object < policies[j].Object
		}
		return policies[i].Action < policies[j].Action
	})
}

// NormalizeRole 规范化角色名，例如 "Admin" 转为 "role:admin"
func NormalizeRole(role string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(role))
	name = strings.TrimPrefix(name, rolePrefix)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" {
		return "", ErrRoleRequired
	}
	return rolePrefix + name, nil
}

// NormalizeObject 去掉 /api/v1 前缀，同一操作的 JSON 与表单路由共用一条策略
func NormalizeObject(object string) string {
	object = strings.TrimSpace(object)
	if !strings.HasPrefix(object, "/") {
		object = "/" + object
	}
	switch {
	case object == apiV1Prefix:
		return "/"
	case strings.HasPrefix(object, apiV1Prefix+"/"):
		return strings.TrimPrefix(object, apiV1Prefix)
	}
	return object
}

func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
