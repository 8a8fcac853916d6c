package entities

import "fmt"

// Scope column values stored alongside a permission.
const (
	ScopeAction  = "action"
	ScopeBlanket = "all"
)

// Scope says which actions a permission governs.
// It is either PerAction (one named action) or Blanket (every action on the resource).
type Scope interface {
	isScope()
	String() string
}

// PerAction scopes a permission to a single named action
// Example: PerAction{Action: "read"}
type PerAction struct {
	Action string
}

func (PerAction) isScope() {}

// String returns the action name
func (s PerAction) String() string {
	return s.Action
}

// Blanket scopes a permission to all actions of a role-resource pair
type Blanket struct{}

func (Blanket) isScope() {}

// String returns "*"
func (Blanket) String() string {
	return "*"
}

// ScopeColumns splits a scope into its persisted (scope, action) column pair.
// Blanket scopes persist an empty action.
func ScopeColumns(s Scope) (string, string) {
	switch v := s.(type) {
	case PerAction:
		return ScopeAction, v.Action
	case Blanket:
		return ScopeBlanket, ""
	default:
		return "", ""
	}
}

// ScopeFromColumns rebuilds a scope from its persisted column pair
func ScopeFromColumns(scope, action string) (Scope, error) {
	switch scope {
	case ScopeAction:
		if action == "" {
			return nil, fmt.Errorf("action scope requires an action")
		}
		return PerAction{Action: action}, nil
	case ScopeBlanket:
		return Blanket{}, nil
	default:
		return nil, fmt.Errorf("unknown scope: %q", scope)
	}
}
