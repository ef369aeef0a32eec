package mocks

import "github.com/you/campusauth/domain"

// MockPolicyService implements domain.PolicyService interface for testing
type MockPolicyService struct {
	AddPolicyFunc    func(role, resource, action, rule string) error
	RemovePolicyFunc func(role, resource, action, rule string) error
	GetPoliciesFunc  func() [][]string
	SeedDefaultsFunc func() error
}

// NewMockPolicyService creates a new MockPolicyService with default behaviors
func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{}
}

// AddPolicy adds a new authorization policy
func (m *MockPolicyService) AddPolicy(role, resource, action, rule string) error {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(role, resource, action, rule)
	}
	// Default behavior: success
	return nil
}

// RemovePolicy removes an authorization policy
func (m *MockPolicyService) RemovePolicy(role, resource, action, rule string) error {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(role, resource, action, rule)
	}
	// Default behavior: success
	return nil
}

// GetPolicies returns all current policies
func (m *MockPolicyService) GetPolicies() [][]string {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	return [][]string{
		{"role_super-admin", "/admin/universities", "(GET|POST)", "*"},
		{"role_university-admin", "/admin/university/:universityId/users", "GET", "path.universityId==token.tenant_id"},
	}
}

// SeedDefaults seeds the built-in policies
func (m *MockPolicyService) SeedDefaults() error {
	if m.SeedDefaultsFunc != nil {
		return m.SeedDefaultsFunc()
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.PolicyService = (*MockPolicyService)(nil)
