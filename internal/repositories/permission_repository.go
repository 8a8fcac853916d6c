package repositories

import (
	"context"
	"fmt"

	"github.com/asakaida/rolegate/internal/entities"
)

// PermissionFilter selects permission records.
// A record matches when it belongs to ResourceID (and RoleID, if set) and either
// it is a per-action rule for Action whose kind is in ActionKinds, or
// it is a blanket rule whose kind is in BlanketKinds.
// An empty kind list disables its branch.
type PermissionFilter struct {
	RoleID       string          // Filter by role ID (optional)
	ResourceID   string          // Filter by resource ID (required)
	Action       string          // Action matched by the per-action branch
	ActionKinds  []entities.Kind // Kinds accepted for per-action rules
	BlanketKinds []entities.Kind // Kinds accepted for blanket rules
}

// Validate checks that the filter can be turned into a query
func (f *PermissionFilter) Validate() error {
	if f == nil {
		return fmt.Errorf("filter is required")
	}
	if f.ResourceID == "" {
		return fmt.Errorf("resource ID is required")
	}
	if len(f.ActionKinds) == 0 && len(f.BlanketKinds) == 0 {
		return fmt.Errorf("at least one kind is required")
	}
	if len(f.ActionKinds) > 0 && f.Action == "" {
		return fmt.Errorf("action is required when filtering per-action kinds")
	}
	for _, k := range f.ActionKinds {
		if !k.Valid() || k.IsBlanket() {
			return fmt.Errorf("invalid per-action kind: %q", k)
		}
	}
	for _, k := range f.BlanketKinds {
		if !k.Valid() || !k.IsBlanket() {
			return fmt.Errorf("invalid blanket kind: %q", k)
		}
	}
	return nil
}

// Matches reports whether p satisfies the filter
func (f *PermissionFilter) Matches(p *entities.Permission) bool {
	if p.ResourceID != f.ResourceID {
		return false
	}
	if f.RoleID != "" && p.RoleID != f.RoleID {
		return false
	}

	switch s := p.Scope.(type) {
	case entities.PerAction:
		return s.Action == f.Action && containsKind(f.ActionKinds, p.Kind)
	case entities.Blanket:
		return containsKind(f.BlanketKinds, p.Kind)
	}
	return false
}

func containsKind(kinds []entities.Kind, k entities.Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

// PermissionRepository defines the interface for permission data access
type PermissionRepository interface {
	// Store inserts a new permission or updates an existing one.
	// The permission ID is assigned on first save.
	Store(ctx context.Context, p *entities.Permission) error

	// Count returns the number of permissions matching the filter
	Count(ctx context.Context, filter *PermissionFilter) (int64, error)

	// List retrieves permissions matching the filter
	// An empty result is returned as an empty slice, never as an error
	List(ctx context.Context, filter *PermissionFilter) ([]*entities.Permission, error)

	// ListByResource retrieves every permission defined on a resource
	ListByResource(ctx context.Context, resourceID string) ([]*entities.Permission, error)
}
