// Package guard turns a bearer access token into an authenticated, authorized
// user. Per request the path is strictly Unauthenticated -> Authenticated ->
// Authorized; any failed step is terminal.
package guard

import (
	"context"
	"errors"

	"github.com/mlanina/auth_service/internal/models"
	"github.com/mlanina/auth_service/pkg/tokens"
)

var (
	ErrUnknownSubject  = errors.New("token subject not found")
	ErrInactiveAccount = errors.New("account is disabled")
	ErrForbidden       = errors.New("role not permitted")
)

// UserLookup is the slice of the store the guard needs.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RolePolicy is a predicate over a user's role, evaluated at authorization
// time.
type RolePolicy func(role string) bool

// RoleIs requires the role to equal r exactly.
func RoleIs(r string) RolePolicy {
	return func(role string) bool { return role == r }
}

// RoleIn requires the role to be one of rs.
func RoleIn(rs ...string) RolePolicy {
	return func(role string) bool {
		for _, r := range rs {
			if role == r {
				return true
			}
		}
		return false
	}
}

type Guard struct {
	Tokens *tokens.AccessTokenService
	Users  UserLookup
}

func New(t *tokens.AccessTokenService, users UserLookup) *Guard {
	return &Guard{Tokens: t, Users: users}
}

// Authenticate verifies the access token, resolves its subject in the store
// and returns the record with the token's role claim overlaid. The token is
// the source of truth for the role during its lifetime: a store-side role
// change only takes effect once the subject logs in again.
func (g *Guard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := g.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := g.Users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUnknownSubject
	}

	user.Role = claims.Role

	if user.Disabled {
		return nil, ErrInactiveAccount
	}

	return user, nil
}

// Authorize evaluates the policy against the user's role and returns the user
// unchanged on success, so calls compose: authenticate, authorize, proceed.
func (g *Guard) Authorize(user *models.User, policy RolePolicy) (*models.User, error) {
	if !policy(user.Role) {
		return nil, ErrForbidden
	}
	return user, nil
}
