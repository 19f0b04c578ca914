package session

import (
	"context"

	"github.com/2beens/serjblog/internal/users"
)

type currentUserKey struct{}

func WithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, currentUserKey{}, user)
}

// CurrentUser returns the authenticated user of the request, or nil
func CurrentUser(ctx context.Context) *users.User {
	user, _ := ctx.Value(currentUserKey{}).(*users.User)
	return user
}

func IsAuthenticated(ctx context.Context) bool {
	return CurrentUser(ctx) != nil
}
