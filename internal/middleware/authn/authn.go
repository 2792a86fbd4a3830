package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger"
	"auth_service/internal/models"

	"github.com/go-chi/render"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type ctxKey struct{}

// New returns middleware that requires a valid `Authorization: Bearer` token
// and loads the token's user into the request context. Tokens are verified
// per request; there is no server-side session.
func New(log *slog.Logger, tokens TokenVerifier, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.New"

			log := log.With(slog.String("op", op))

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, r, "Authorization token required")
				return
			}

			email, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Warn("invalid bearer token", sl.Err(err))

				unauthorized(w, r, "Token is invalid or expired")
				return
			}

			user, err := users.UserByEmail(r.Context(), email)
			if err != nil {
				log.Warn("token subject not found", sl.Err(err))

				unauthorized(w, r, "User not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), ctxKey{}, user),
			))
		}

		return http.HandlerFunc(fn)
	}
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(models.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error(msg))
}
