package identity

import (
	"context"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient is the part of *auth.Client used here.
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type Firebase struct {
	client FirebaseAuthClient
}

func NewFirebase(client FirebaseAuthClient) *Firebase {
	return &Firebase{client: client}
}

func (f *Firebase) Verify(ctx context.Context, token string, opts VerifyOptions) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMissing
	}
	if !looksLikeJWT(token) {
		return nil, ErrTokenMalformed
	}

	var (
		tok *auth.Token
		err error
	)
	if opts.CheckRevoked {
		tok, err = f.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	} else {
		tok, err = f.client.VerifyIDToken(ctx, token)
	}
	if err != nil {
		return nil, mapFirebaseErr(err)
	}

	return claimsFromFirebase(tok), nil
}

func (f *Firebase) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.UID == "" {
		return ErrTokenMissing
	}
	return f.client.RevokeRefreshTokens(ctx, claims.UID)
}

func mapFirebaseErr(err error) error {
	switch {
	case auth.IsIDTokenExpired(err):
		return withCause(ErrTokenExpired, err)
	case auth.IsIDTokenRevoked(err):
		return withCause(ErrTokenRevoked, err)
	case auth.IsIDTokenInvalid(err):
		return withCause(ErrTokenMalformed, err)
	default:
		return withCause(ErrVerificationFailed, err)
	}
}

func claimsFromFirebase(tok *auth.Token) *Claims {
	c := &Claims{
		UID:       tok.UID,
		IssuedAt:  time.Unix(tok.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(tok.Expires, 0).UTC(),
		Extra:     tok.Claims,
	}
	if email, ok := tok.Claims["email"].(string); ok {
		c.Email = email
	}
	return c
}
