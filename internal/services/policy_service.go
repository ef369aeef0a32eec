package services

import (
	"github.com/casbin/casbin/v2"

	"github.com/you/campusauth/domain"
)

const (
	// AnyRule marks a policy without a field rule
	AnyRule = "*"
	// TenantScopeRule restricts a university admin to its own tenant's routes
	TenantScopeRule = "path.universityId==token.tenant_id"
)

// Subject returns the casbin subject for a role
func Subject(role domain.Role) string {
	return "role_" + string(role)
}

// DefaultPolicies are seeded on startup. Columns: subject, path pattern,
// method pattern, field rule.
var DefaultPolicies = [][]string{
	{Subject(domain.RoleSuperAdmin), "/auth/logout-all", "POST", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/profile", "(GET|PUT)", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/change-password", "PUT", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/universities", "(GET|POST)", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/universities/:id", "(GET|PUT|DELETE)", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/universities/:id/subscription", "PATCH", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/users", "GET", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/university/:universityId/users", "GET", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/university/:universityId/stats", "GET", AnyRule},
	{Subject(domain.RoleSuperAdmin), "/admin/policies", "(GET|POST|DELETE)", AnyRule},

	{Subject(domain.RoleUniversityAdmin), "/admin/profile", "(GET|PUT)", AnyRule},
	{Subject(domain.RoleUniversityAdmin), "/admin/change-password", "PUT", AnyRule},
	{Subject(domain.RoleUniversityAdmin), "/admin/university/:universityId/users", "GET", TenantScopeRule},
	{Subject(domain.RoleUniversityAdmin), "/admin/university/:universityId/stats", "GET", TenantScopeRule},
}

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

func (w *CasbinEnforcerWrapper) SavePolicy() error {
	return w.enforcer.SavePolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action, rule string) error {
	_, err := p.enforcer.AddPolicy(role, resource, action, rule)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action, rule string) error {
	_, err := p.enforcer.RemovePolicy(role, resource, action, rule)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// SeedDefaults adds any of DefaultPolicies that are missing and persists
// once. Existing policies are left alone.
func (p *PolicyServiceImpl) SeedDefaults() error {
	added := false
	for _, rule := range DefaultPolicies {
		ok, err := p.enforcer.AddPolicy(rule[0], rule[1], rule[2], rule[3])
		if err != nil {
			return err
		}
		added = added || ok
	}
	if !added {
		return nil
	}
	return p.enforcer.SavePolicy()
}
