package handlers

import (
	"context"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/services/authorization"
)

// Mock PermissionManager
type mockPermissionManager struct {
	allowFunc    func(ctx context.Context, role entities.Role, action string, resource entities.Resource) error
	denyFunc     func(ctx context.Context, role entities.Role, action string, resource entities.Resource) error
	allowAllFunc func(ctx context.Context, role entities.Role, resource entities.Resource) error
	denyAllFunc  func(ctx context.Context, role entities.Role, resource entities.Resource) error
	explainFunc  func(ctx context.Context, role entities.Role, action string, resource entities.Resource) (*authorization.Decision, error)
	rulesFunc    func(ctx context.Context, resource entities.Resource) ([]*entities.Permission, error)
}

func (m *mockPermissionManager) Allow(ctx context.Context, role entities.Role, action string, resource entities.Resource) error {
	if m.allowFunc != nil {
		return m.allowFunc(ctx, role, action, resource)
	}
	return nil
}

func (m *mockPermissionManager) Deny(ctx context.Context, role entities.Role, action string, resource entities.Resource) error {
	if m.denyFunc != nil {
		return m.denyFunc(ctx, role, action, resource)
	}
	return nil
}

func (m *mockPermissionManager) AllowAll(ctx context.Context, role entities.Role, resource entities.Resource) error {
	if m.allowAllFunc != nil {
		return m.allowAllFunc(ctx, role, resource)
	}
	return nil
}

func (m *mockPermissionManager) DenyAll(ctx context.Context, role entities.Role, resource entities.Resource) error {
	if m.denyAllFunc != nil {
		return m.denyAllFunc(ctx, role, resource)
	}
	return nil
}

func (m *mockPermissionManager) HasAccess(ctx context.Context, role entities.Role, action string, resource entities.Resource) (bool, error) {
	d, err := m.Explain(ctx, role, action, resource)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

func (m *mockPermissionManager) Explain(ctx context.Context, role entities.Role, action string, resource entities.Resource) (*authorization.Decision, error) {
	if m.explainFunc != nil {
		return m.explainFunc(ctx, role, action, resource)
	}
	return &authorization.Decision{Allowed: true, Reason: authorization.ReasonDefaultOpen}, nil
}

func (m *mockPermissionManager) Rules(ctx context.Context, resource entities.Resource) ([]*entities.Permission, error) {
	if m.rulesFunc != nil {
		return m.rulesFunc(ctx, resource)
	}
	return nil, nil
}

// Mock HealthChecker
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.err
}
