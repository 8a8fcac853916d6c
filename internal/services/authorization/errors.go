package authorization

import (
	"errors"
	"fmt"

	"github.com/asakaida/rolegate/internal/entities"
)

// ErrInvalidArgument is returned before any storage access when a role,
// resource or action argument is missing
var ErrInvalidArgument = errors.New("invalid argument")

func checkRoleAndResource(role entities.Role, resource entities.Resource) error {
	if role == nil || role.Identifier() == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidArgument)
	}
	if resource == nil || resource.Identifier() == "" {
		return fmt.Errorf("%w: resource is required", ErrInvalidArgument)
	}
	return nil
}

// An empty action would be indistinguishable from a blanket rule
func checkAction(action string) error {
	if action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidArgument)
	}
	return nil
}
