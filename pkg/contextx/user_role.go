package contextx

import (
	"context"
	"fmt"
)

type UserRole string

const (
	RoleBuyer UserRole = "buyer"
	RoleAdmin UserRole = "admin"
)

type contextKeyUserRole struct{}

func (r UserRole) String() string {
	return string(r)
}

func WithUserRole(ctx context.Context, role UserRole) context.Context {
	return context.WithValue(ctx, contextKeyUserRole{}, role)
}

func UserRoleFromContext(ctx context.Context) (UserRole, error) {
	role, ok := ctx.Value(contextKeyUserRole{}).(UserRole)
	if !ok {
		return "", fmt.Errorf("user role: %w", ErrNoValue)
	}

	return role, nil
}
