package entities

import (
	"fmt"
	"time"
)

// Permission is one persisted allow/deny rule
// Example: admin may "read" doc1 -> {RoleID: "admin", Scope: PerAction{"read"}, ResourceID: "doc1", Kind: ALLOW}
type Permission struct {
	ID         string // Assigned by storage on first save
	RoleID     string // Role identifier (e.g., "admin")
	ResourceID string // Resource identifier (e.g., "doc1")
	Scope      Scope  // PerAction or Blanket
	Kind       Kind   // ALLOW, DENY, ALLOW_ALL or DENY_ALL
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Action returns the action name, or "" for blanket rules
func (p *Permission) Action() string {
	if a, ok := p.Scope.(PerAction); ok {
		return a.Action
	}
	return ""
}

// String returns a string representation of the permission
// Format: role_id#action@resource_id=KIND (action is "*" for blanket rules)
func (p *Permission) String() string {
	scope := "?"
	if p.Scope != nil {
		scope = p.Scope.String()
	}
	return fmt.Sprintf("%s#%s@%s=%s", p.RoleID, scope, p.ResourceID, p.Kind)
}

// Validate checks if the permission is well formed
func (p *Permission) Validate() error {
	if p.RoleID == "" {
		return fmt.Errorf("role ID is required")
	}
	if p.ResourceID == "" {
		return fmt.Errorf("resource ID is required")
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("invalid kind: %q", p.Kind)
	}

	switch s := p.Scope.(type) {
	case PerAction:
		if s.Action == "" {
			return fmt.Errorf("action is required for per-action rules")
		}
		if p.Kind.IsBlanket() {
			return fmt.Errorf("kind %s requires a blanket scope", p.Kind)
		}
	case Blanket:
		if !p.Kind.IsBlanket() {
			return fmt.Errorf("kind %s requires an action scope", p.Kind)
		}
	default:
		return fmt.Errorf("scope is required")
	}

	return nil
}
