package auth

import (
	"context"

	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/identity"
)

var ErrInsufficientPermissions = apperror.Forbidden("Insufficient permissions")

// Authenticator combines token verification with the admin allow-list.
type Authenticator struct {
	verifier     identity.Verifier
	policy       *Policy
	checkRevoked bool
}

func NewAuthenticator(verifier identity.Verifier, policy *Policy, checkRevoked bool) *Authenticator {
	return &Authenticator{verifier: verifier, policy: policy, checkRevoked: checkRevoked}
}

// Identify verifies token without consulting the allow-list.
func (a *Authenticator) Identify(ctx context.Context, token string) (*identity.Claims, error) {
	return a.verifier.Verify(ctx, token, identity.VerifyOptions{CheckRevoked: a.checkRevoked})
}

// Authenticate verifies token and requires its email to be an allowed admin.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*identity.Claims, error) {
	claims, err := a.Identify(ctx, token)
	if err != nil {
		return nil, err
	}
	if !a.policy.IsAllowedAdmin(claims.Email) {
		return nil, ErrInsufficientPermissions
	}
	return claims, nil
}

func (a *Authenticator) IsAllowedAdmin(email string) bool {
	return a.policy.IsAllowedAdmin(email)
}
