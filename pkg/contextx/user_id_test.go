package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bullion_market/pkg/contextx"
)

func TestUserID(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	var testUserIDEmpty contextx.UserID

	testUserIDNotEmpty := contextx.UserID(42)

	userID, err := contextx.UserIDFromContext(ctx)
	rq.Equal(testUserIDEmpty, userID)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "user id: no value in context")

	ctx = contextx.WithUserID(ctx, testUserIDNotEmpty)

	userID, err = contextx.UserIDFromContext(ctx)
	rq.Equal(testUserIDNotEmpty, userID)
	rq.Equal("42", userID.String())
	rq.NoError(err)
}

func TestUserRole(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	role, err := contextx.UserRoleFromContext(ctx)
	rq.Empty(role)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "user role: no value in context")

	ctx = contextx.WithUserRole(ctx, contextx.RoleAdmin)

	role, err = contextx.UserRoleFromContext(ctx)
	rq.NoError(err)
	rq.Equal(contextx.RoleAdmin, role)
}
