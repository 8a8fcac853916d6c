package handlers

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// PermissionClient calls the Permission service over a gRPC connection
type PermissionClient struct {
	cc grpc.ClientConnInterface
}

// NewPermissionClient creates a new PermissionClient
func NewPermissionClient(cc grpc.ClientConnInterface) *PermissionClient {
	return &PermissionClient{cc: cc}
}

// Allow lets role perform action on resource
func (c *PermissionClient) Allow(ctx context.Context, role, action, resource string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("Allow"), ruleRequest(role, action, resource), new(emptypb.Empty), opts...)
}

// Deny forbids role to perform action on resource
func (c *PermissionClient) Deny(ctx context.Context, role, action, resource string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("Deny"), ruleRequest(role, action, resource), new(emptypb.Empty), opts...)
}

// AllowAll lets role perform every action on resource
func (c *PermissionClient) AllowAll(ctx context.Context, role, resource string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("AllowAll"), ruleRequest(role, "", resource), new(emptypb.Empty), opts...)
}

// DenyAll forbids role every action on resource
func (c *PermissionClient) DenyAll(ctx context.Context, role, resource string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("DenyAll"), ruleRequest(role, "", resource), new(emptypb.Empty), opts...)
}

// Check reports whether role may perform action on resource, and why
func (c *PermissionClient) Check(ctx context.Context, role, action, resource string, opts ...grpc.CallOption) (*CheckResult, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Check"), ruleRequest(role, action, resource), out, opts...); err != nil {
		return nil, err
	}
	return &CheckResult{
		Allowed: out.GetFields()["allowed"].GetBoolValue(),
		Reason:  out.GetFields()["reason"].GetStringValue(),
	}, nil
}

// ListRules returns every rule defined on resource
func (c *PermissionClient) ListRules(ctx context.Context, resource string, opts ...grpc.CallOption) ([]*RuleView, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListRules"), ruleRequest("", "", resource), out, opts...); err != nil {
		return nil, err
	}

	values := out.GetFields()["rules"].GetListValue().GetValues()
	rules := make([]*RuleView, 0, len(values))
	for i, v := range values {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("invalid rule at index %d", i)
		}
		rules = append(rules, structToRuleView(s))
	}
	return rules, nil
}

func ruleRequest(role, action, resource string) *structpb.Struct {
	fields := map[string]*structpb.Value{}
	if role != "" {
		fields[fieldRole] = structpb.NewStringValue(role)
	}
	if action != "" {
		fields[fieldAction] = structpb.NewStringValue(action)
	}
	if resource != "" {
		fields[fieldResource] = structpb.NewStringValue(resource)
	}
	return &structpb.Struct{Fields: fields}
}
