package handlers

import (
	"context"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/services/authorization"
	"github.com/hashicorp/go-hclog"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// PermissionHandler handles Permission service gRPC requests
type PermissionHandler struct {
	manager authorization.PermissionManagerInterface
	logger  hclog.Logger
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(manager authorization.PermissionManagerInterface, logger hclog.Logger) *PermissionHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PermissionHandler{
		manager: manager,
		logger:  logger.Named("grpc"),
	}
}

// Allow handles the Allow RPC
func (h *PermissionHandler) Allow(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	role, action, resource := parseRuleRequest(req)
	if err := h.manager.Allow(ctx, role, action, resource); err != nil {
		return nil, toStatus(h.logger, "allow", err)
	}
	return &emptypb.Empty{}, nil
}

// Deny handles the Deny RPC
func (h *PermissionHandler) Deny(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	role, action, resource := parseRuleRequest(req)
	if err := h.manager.Deny(ctx, role, action, resource); err != nil {
		return nil, toStatus(h.logger, "deny", err)
	}
	return &emptypb.Empty{}, nil
}

// AllowAll handles the AllowAll RPC
func (h *PermissionHandler) AllowAll(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	role, _, resource := parseRuleRequest(req)
	if err := h.manager.AllowAll(ctx, role, resource); err != nil {
		return nil, toStatus(h.logger, "allow all", err)
	}
	return &emptypb.Empty{}, nil
}

// DenyAll handles the DenyAll RPC
func (h *PermissionHandler) DenyAll(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	role, _, resource := parseRuleRequest(req)
	if err := h.manager.DenyAll(ctx, role, resource); err != nil {
		return nil, toStatus(h.logger, "deny all", err)
	}
	return &emptypb.Empty{}, nil
}

// Check handles the Check RPC
func (h *PermissionHandler) Check(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	role, action, resource := parseRuleRequest(req)
	d, err := h.manager.Explain(ctx, role, action, resource)
	if err != nil {
		return nil, toStatus(h.logger, "check", err)
	}

	result := newCheckResult(d)
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAllowed: structpb.NewBoolValue(result.Allowed),
		fieldReason:  structpb.NewStringValue(result.Reason),
	}}, nil
}

// ListRules handles the ListRules RPC
func (h *PermissionHandler) ListRules(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	_, _, resource := parseRuleRequest(req)
	rules, err := h.manager.Rules(ctx, resource)
	if err != nil {
		return nil, toStatus(h.logger, "list rules", err)
	}

	values := make([]*structpb.Value, 0, len(rules))
	for _, r := range rules {
		values = append(values, ruleViewToValue(newRuleView(r)))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRules: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}, nil
}

func parseRuleRequest(req *structpb.Struct) (entities.Role, string, entities.Resource) {
	return entities.RoleID(stringField(req, fieldRole)),
		stringField(req, fieldAction),
		entities.ResourceID(stringField(req, fieldResource))
}
