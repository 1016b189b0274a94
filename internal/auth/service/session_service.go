package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/identity"
)

var ErrPasswordLoginDisabled = apperror.Validation("Password sign-in is not enabled")

// PasswordProvider is implemented by identity.Local.
type PasswordProvider interface {
	Login(ctx context.Context, username, password string) (string, *identity.Claims, error)
	Refresh(ctx context.Context, claims *identity.Claims) (string, *identity.Claims, error)
}

// Forgetter drops cached verifications; implemented by identity.CachingVerifier.
type Forgetter interface {
	Forget(ctx context.Context, token string)
}

// Session is what the HTTP layer turns into the auth cookie.
type Session struct {
	Token     string
	Claims    *identity.Claims
	MaxAge    time.Duration
	ExpiresAt time.Time
}

type SessionService struct {
	authn     *auth.Authenticator
	revoker   identity.Revoker
	passwords PasswordProvider
	forgetter Forgetter
	cookieTTL time.Duration
	log       *zap.Logger
	now       func() time.Time
}

type SessionDeps struct {
	Authenticator *auth.Authenticator
	Revoker       identity.Revoker
	// Passwords is nil unless the local provider is configured.
	Passwords PasswordProvider
	Forgetter Forgetter
	CookieTTL time.Duration
	Log       *zap.Logger
}

func NewSessionService(d SessionDeps) *SessionService {
	return &SessionService{
		authn:     d.Authenticator,
		revoker:   d.Revoker,
		passwords: d.Passwords,
		forgetter: d.Forgetter,
		cookieTTL: d.CookieTTL,
		log:       d.Log,
		now:       time.Now,
	}
}

// SignIn accepts an ID token minted by the identity provider on the client
// and turns it into a cookie session for an allowed admin.
func (s *SessionService) SignIn(ctx context.Context, idToken string) (*Session, error) {
	claims, err := s.authn.Authenticate(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.session(idToken, claims), nil
}

func (s *SessionService) Login(ctx context.Context, username, password string) (*Session, error) {
	if s.passwords == nil {
		return nil, ErrPasswordLoginDisabled
	}
	if username == "" || password == "" {
		return nil, apperror.Validation("Username and password are required")
	}

	token, claims, err := s.passwords.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !s.authn.IsAllowedAdmin(claims.Email) {
		return nil, auth.ErrInsufficientPermissions
	}
	return s.session(token, claims), nil
}

// Refresh exchanges a valid session token for a new one.
func (s *SessionService) Refresh(ctx context.Context, token string) (*Session, error) {
	if s.passwords == nil {
		return nil, ErrPasswordLoginDisabled
	}
	claims, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	fresh, freshClaims, err := s.passwords.Refresh(ctx, claims)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, token)
	return s.session(fresh, freshClaims), nil
}

// SignOut revokes the identity behind token when it still verifies. An
// unusable token is not an error: the cookie is cleared either way.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	defer s.forget(ctx, token)

	claims, err := s.authn.Identify(ctx, token)
	if err != nil {
		s.log.Debug("sign-out with unusable token", zap.Error(err))
		return nil
	}
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims); err != nil {
		return apperror.Internal("revoke session", err)
	}
	return nil
}

// Me returns the identity behind token and whether it may administer.
func (s *SessionService) Me(ctx context.Context, token string) (*identity.Claims, bool, error) {
	claims, err := s.authn.Identify(ctx, token)
	if err != nil {
		return nil, false, err
	}
	return claims, s.authn.IsAllowedAdmin(claims.Email), nil
}

// session caps the cookie lifetime at the token's remaining validity.
func (s *SessionService) session(token string, claims *identity.Claims) *Session {
	maxAge := s.cookieTTL
	if !claims.ExpiresAt.IsZero() {
		if left := claims.ExpiresAt.Sub(s.now()); left < maxAge {
			maxAge = left
		}
	}
	return &Session{
		Token:     token,
		Claims:    claims,
		MaxAge:    maxAge,
		ExpiresAt: s.now().Add(maxAge).UTC(),
	}
}

func (s *SessionService) forget(ctx context.Context, token string) {
	if s.forgetter != nil {
		s.forgetter.Forget(ctx, token)
	}
}
