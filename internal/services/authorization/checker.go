package authorization

import (
	"context"
	"fmt"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/repositories"
)

// Reason names the precedence step that decided an access check
type Reason string

const (
	ReasonExplicitAllow Reason = "explicit_allow" // per-action ALLOW for the role
	ReasonExplicitDeny  Reason = "explicit_deny"  // per-action DENY for the role
	ReasonBlanketAllow  Reason = "blanket_allow"  // ALLOW_ALL for the role
	ReasonBlanketDeny   Reason = "blanket_deny"   // DENY_ALL for the role
	ReasonImplicitDeny  Reason = "implicit_deny"  // no rule for the role, but another role is allowed
	ReasonDefaultOpen   Reason = "default_open"   // nobody has any allow rule for the resource/action
)

// Decision is the result of an access check
type Decision struct {
	Allowed bool
	Reason  Reason
	Rule    *entities.Permission // The rule that matched; nil for implicit deny and default open
}

// precedence lists the rule kinds of the evaluated role in the order they decide access
var precedence = []struct {
	kind   entities.Kind
	reason Reason
}{
	{entities.KindAllow, ReasonExplicitAllow},
	{entities.KindDeny, ReasonExplicitDeny},
	{entities.KindAllowAll, ReasonBlanketAllow},
	{entities.KindDenyAll, ReasonBlanketDeny},
}

// HasAccess reports whether role may perform action on resource.
// action must name a concrete action: an empty action is rejected with ErrInvalidArgument
// rather than evaluated against blanket rules, since blanket rules are stored with an empty action.
func (m *PermissionManager) HasAccess(ctx context.Context, role entities.Role, action string, resource entities.Resource) (bool, error) {
	d, err := m.Explain(ctx, role, action, resource)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// Explain evaluates access and reports which rule decided it.
// Like HasAccess it rejects an empty action with ErrInvalidArgument before reading storage.
// Precedence, first match wins:
//  1. per-action ALLOW  -> allowed
//  2. per-action DENY   -> denied
//  3. ALLOW_ALL         -> allowed
//  4. DENY_ALL          -> denied
//  5. some role has ALLOW for the action or ALLOW_ALL on the resource -> denied
//  6. otherwise         -> allowed
func (m *PermissionManager) Explain(ctx context.Context, role entities.Role, action string, resource entities.Resource) (*Decision, error) {
	if err := checkRoleAndResource(role, resource); err != nil {
		return nil, err
	}
	if err := checkAction(action); err != nil {
		return nil, err
	}

	rules, err := m.lookup(ctx, role, entities.PerAction{Action: action}, resource)
	if err != nil {
		return nil, err
	}

	var d *Decision
	for _, step := range precedence {
		if rule := rules[step.kind]; rule != nil {
			d = &Decision{Allowed: rule.Kind.Allows(), Reason: step.reason, Rule: rule}
			break
		}
	}

	if d == nil {
		guarded, err := m.isGuarded(ctx, action, resource)
		if err != nil {
			return nil, err
		}
		if guarded {
			d = &Decision{Allowed: false, Reason: ReasonImplicitDeny}
		} else {
			d = &Decision{Allowed: true, Reason: ReasonDefaultOpen}
		}
	}

	m.logger.Trace("access decided",
		"role", role.Identifier(),
		"action", action,
		"resource", resource.Identifier(),
		"allowed", d.Allowed,
		"reason", d.Reason,
	)
	if m.recorder != nil {
		m.recorder.RecordDecision(string(d.Reason), d.Allowed)
	}

	return d, nil
}

// isGuarded reports whether any role holds an ALLOW rule for action or an ALLOW_ALL rule on resource
func (m *PermissionManager) isGuarded(ctx context.Context, action string, resource entities.Resource) (bool, error) {
	count, err := m.repo.Count(ctx, &repositories.PermissionFilter{
		ResourceID:   resource.Identifier(),
		Action:       action,
		ActionKinds:  []entities.Kind{entities.KindAllow},
		BlanketKinds: []entities.Kind{entities.KindAllowAll},
	})
	if err != nil {
		return false, fmt.Errorf("failed to count allow rules: %w", err)
	}
	return count > 0, nil
}
