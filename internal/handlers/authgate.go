package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type principalKey struct{}

// principalFromContext returns the authenticated user attached by the auth gate.
func principalFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(principalKey{}).(models.User)
	return user, ok
}

// withPrincipal stores the authenticated user on the context. Exported to the
// package's tests through handlers_test helpers.
func withPrincipal(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, principalKey{}, user)
}

// AuthGate verifies the access token from the Authorization header or the
// accessToken cookie and attaches the resolved principal to the request
// context before the wrapped handler runs.
type AuthGate struct {
	Tokens TokenIssuer
	Users  UserStore
}

// Wrap guards a handler; requests without a valid token are rejected with 401
// before the handler executes.
func (g AuthGate) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		token := bearerToken(r)
		if token == "" {
			respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
			return
		}

		claims, err := g.Tokens.VerifyAccess(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				respondError(ctx, w, http.StatusUnauthorized, "access token expired")
				return
			}
			respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
			return
		}

		user, err := g.Users.FindByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
				return
			}
			logger.Error("auth gate user lookup failed", "error", err, "userId", claims.Subject)
			respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
			return
		}

		next(w, r.WithContext(withPrincipal(ctx, user)))
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}

	return ""
}
