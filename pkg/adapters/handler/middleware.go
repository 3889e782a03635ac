package handler

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

const authCookie = "auth_token"

type ctxKey int

const identityKey ctxKey = iota

// IdentityFrom returns the caller resolved by AuthMiddleware, or nil.
func IdentityFrom(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityKey).(*domain.Identity)
	return id
}

func withIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

type Middleware struct {
	jwtSecret []byte
	sessions  ports.SessionStore
	log       logger.Logger
}

// NewMiddleware builds the auth middleware. sessions may be nil, in which
// case logout only clears the cookie.
func NewMiddleware(cfg *config.Config, sessions ports.SessionStore, log logger.Logger) *Middleware {
	return &Middleware{
		jwtSecret: []byte(cfg.JWTSecret),
		sessions:  sessions,
		log:       log,
	}
}

// AuthMiddleware verifies the JWT cookie and resolves the caller's identity.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookie)
		if err != nil {
			deny(w)
			return
		}

		claims, err := parseToken(cookie.Value, m.jwtSecret)
		if err != nil {
			m.log.Debug("rejected auth token", logger.Error(err))
			deny(w)
			return
		}

		if m.sessions != nil && claims.ID != "" {
			revoked, err := m.sessions.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				fail(w, r, m.log, "check session", err)
				return
			}
			if revoked {
				deny(w)
				return
			}
		}

		id := &domain.Identity{UserID: claims.Subject, Email: claims.Email}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// deny answers every protected route with JSON; only /api is mounted behind
// the middleware and the frontend handles the login redirect.
func deny(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
}

func parseToken(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
