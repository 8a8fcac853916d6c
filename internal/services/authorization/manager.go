package authorization

import (
	"context"
	"fmt"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/repositories"
	"github.com/hashicorp/go-hclog"
)

// PermissionManagerInterface defines the interface for permission mutation and evaluation
type PermissionManagerInterface interface {
	Allow(ctx context.Context, role entities.Role, action string, resource entities.Resource) error
	Deny(ctx context.Context, role entities.Role, action string, resource entities.Resource) error
	AllowAll(ctx context.Context, role entities.Role, resource entities.Resource) error
	DenyAll(ctx context.Context, role entities.Role, resource entities.Resource) error
	HasAccess(ctx context.Context, role entities.Role, action string, resource entities.Resource) (bool, error)
	Explain(ctx context.Context, role entities.Role, action string, resource entities.Resource) (*Decision, error)
	Rules(ctx context.Context, resource entities.Resource) ([]*entities.Permission, error)
}

// DecisionRecorder receives every access decision, e.g. to export metrics
type DecisionRecorder interface {
	RecordDecision(reason string, allowed bool)
}

// PermissionManager stores allow/deny rules and evaluates access against them.
// It holds no state of its own; everything lives in the repository.
type PermissionManager struct {
	repo     repositories.PermissionRepository
	logger   hclog.Logger
	recorder DecisionRecorder // Optional
}

// NewPermissionManager creates a new PermissionManager
func NewPermissionManager(repo repositories.PermissionRepository, logger hclog.Logger) *PermissionManager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PermissionManager{
		repo:   repo,
		logger: logger.Named("permissions"),
	}
}

// NewPermissionManagerWithRecorder creates a new PermissionManager that reports decisions to recorder
func NewPermissionManagerWithRecorder(
	repo repositories.PermissionRepository,
	logger hclog.Logger,
	recorder DecisionRecorder,
) *PermissionManager {
	m := NewPermissionManager(repo, logger)
	m.recorder = recorder
	return m
}

// Allow lets role perform action on resource
func (m *PermissionManager) Allow(ctx context.Context, role entities.Role, action string, resource entities.Resource) error {
	if err := checkAction(action); err != nil {
		return err
	}
	return m.set(ctx, role, entities.PerAction{Action: action}, resource, entities.KindAllow)
}

// Deny forbids role to perform action on resource
func (m *PermissionManager) Deny(ctx context.Context, role entities.Role, action string, resource entities.Resource) error {
	if err := checkAction(action); err != nil {
		return err
	}
	return m.set(ctx, role, entities.PerAction{Action: action}, resource, entities.KindDeny)
}

// AllowAll lets role perform every action on resource unless a per-action rule says otherwise
func (m *PermissionManager) AllowAll(ctx context.Context, role entities.Role, resource entities.Resource) error {
	return m.set(ctx, role, entities.Blanket{}, resource, entities.KindAllowAll)
}

// DenyAll forbids role every action on resource unless a per-action rule says otherwise
func (m *PermissionManager) DenyAll(ctx context.Context, role entities.Role, resource entities.Resource) error {
	return m.set(ctx, role, entities.Blanket{}, resource, entities.KindDenyAll)
}

// Rules returns every rule defined on resource
func (m *PermissionManager) Rules(ctx context.Context, resource entities.Resource) ([]*entities.Permission, error) {
	if resource == nil || resource.Identifier() == "" {
		return nil, fmt.Errorf("%w: resource is required", ErrInvalidArgument)
	}

	rules, err := m.repo.ListByResource(ctx, resource.Identifier())
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// set flips the existing rule for the scope to kind, or creates one.
// Either way exactly one write is issued.
func (m *PermissionManager) set(
	ctx context.Context,
	role entities.Role,
	scope entities.Scope,
	resource entities.Resource,
	kind entities.Kind,
) error {
	if err := checkRoleAndResource(role, resource); err != nil {
		return err
	}

	rules, err := m.lookup(ctx, role, scope, resource)
	if err != nil {
		return err
	}

	// Re-storing a same-kind rule keeps repeated calls from creating duplicates
	existing := rules[kind.Opposite()]
	if existing == nil {
		existing = rules[kind]
	}

	if existing != nil {
		previous := existing.Kind
		existing.Kind = kind
		if err := m.repo.Store(ctx, existing); err != nil {
			return fmt.Errorf("failed to update permission: %w", err)
		}
		m.logger.Debug("permission updated", "rule", existing.String(), "previous", previous)
		return nil
	}

	permission := &entities.Permission{
		RoleID:     role.Identifier(),
		ResourceID: resource.Identifier(),
		Scope:      scope,
		Kind:       kind,
	}
	if err := m.repo.Store(ctx, permission); err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}
	m.logger.Debug("permission created", "rule", permission.String(), "id", permission.ID)

	return nil
}

// lookup fetches the per-action and blanket rules of role on resource in one query,
// keyed by kind. If storage holds duplicates the last row read wins.
func (m *PermissionManager) lookup(
	ctx context.Context,
	role entities.Role,
	scope entities.Scope,
	resource entities.Resource,
) (map[entities.Kind]*entities.Permission, error) {
	filter := &repositories.PermissionFilter{
		RoleID:       role.Identifier(),
		ResourceID:   resource.Identifier(),
		BlanketKinds: []entities.Kind{entities.KindAllowAll, entities.KindDenyAll},
	}
	if a, ok := scope.(entities.PerAction); ok {
		filter.Action = a.Action
		filter.ActionKinds = []entities.Kind{entities.KindAllow, entities.KindDeny}
	}

	rules, err := m.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to look up permissions: %w", err)
	}

	byKind := make(map[entities.Kind]*entities.Permission, len(rules))
	for _, r := range rules {
		byKind[r.Kind] = r
	}
	return byKind, nil
}
