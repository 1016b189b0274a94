package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/auth/service"
)

type Handler struct {
	sessions   *service.SessionService
	cookieName string
	log        *zap.Logger
}

func New(sessions *service.SessionService, cookieName string, log *zap.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		cookieName: cookieName,
		log:        log,
	}
}

type signInReq struct {
	IDToken string `json:"idToken"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResp struct {
	Success   bool      `json:"success"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	// Token is only returned by the password flows, which have no other
	// way to hand the token to a non-browser client.
	Token string `json:"token,omitempty"`
}

type meResp struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}
