package handlers

import (
	"context"
	"errors"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/services/authorization"
	"github.com/hashicorp/go-hclog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request and response field names
const (
	fieldRole     = "role"
	fieldAction   = "action"
	fieldResource = "resource"
	fieldAllowed  = "allowed"
	fieldReason   = "reason"
	fieldRules    = "rules"
	fieldID       = "id"
	fieldScope    = "scope"
	fieldKind     = "kind"
)

// CheckResult is the outcome of an access check as seen by clients
type CheckResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// RuleView is the wire representation of a stored rule
type RuleView struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Scope    string `json:"scope"`
	Action   string `json:"action,omitempty"`
	Kind     string `json:"kind"`
}

func newCheckResult(d *authorization.Decision) *CheckResult {
	return &CheckResult{Allowed: d.Allowed, Reason: string(d.Reason)}
}

func newRuleView(p *entities.Permission) *RuleView {
	scope, action := entities.ScopeColumns(p.Scope)
	return &RuleView{
		ID:       p.ID,
		Role:     p.RoleID,
		Resource: p.ResourceID,
		Scope:    scope,
		Action:   action,
		Kind:     string(p.Kind),
	}
}

func ruleViewToValue(r *RuleView) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID:       structpb.NewStringValue(r.ID),
		fieldRole:     structpb.NewStringValue(r.Role),
		fieldResource: structpb.NewStringValue(r.Resource),
		fieldScope:    structpb.NewStringValue(r.Scope),
		fieldAction:   structpb.NewStringValue(r.Action),
		fieldKind:     structpb.NewStringValue(r.Kind),
	}})
}

func structToRuleView(s *structpb.Struct) *RuleView {
	f := s.GetFields()
	return &RuleView{
		ID:       f[fieldID].GetStringValue(),
		Role:     f[fieldRole].GetStringValue(),
		Resource: f[fieldResource].GetStringValue(),
		Scope:    f[fieldScope].GetStringValue(),
		Action:   f[fieldAction].GetStringValue(),
		Kind:     f[fieldKind].GetStringValue(),
	}
}

// stringField returns the string field name of req, or "" if it is missing or not a string
func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

// toStatus maps a manager error onto a gRPC status
func toStatus(logger hclog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, authorization.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.Error("request failed", "op", op, "error", err)
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}
