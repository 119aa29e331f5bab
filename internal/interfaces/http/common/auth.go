package common

import "context"

type authUserKey struct{}

// AuthenticatedUser は JWT 検証を通過した操作主体。Roles は発行側が
// 付与した場合のみ埋まる。
type AuthenticatedUser struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Username string   `json:"username,omitempty"`
	Picture  string   `json:"picture,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// HasRole reports whether the user carries the given role claim.
func (u AuthenticatedUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ContextWithUser stores the authenticated user into context.
func ContextWithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authUserKey{}, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserKey{}).(AuthenticatedUser)
	return user, ok
}
