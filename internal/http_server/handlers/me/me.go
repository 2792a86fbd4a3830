package me

import (
	"log/slog"
	"net/http"
	"time"

	resp "auth_service/internal/lib/api/response"
	"auth_service/internal/middleware/authn"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	AvatarURL  *string    `json:"avatar,omitempty"`
	IsVerified bool       `json:"is_email_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

type Response struct {
	resp.Response
	User User `json:"user"`
}

// New handles GET /me; the authn middleware has already resolved the bearer
// token to a user.
func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.me.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			log.Error("no user in request context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Not authorized"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			User: User{
				ID:         user.ID,
				Name:       user.Name,
				Email:      user.Email,
				AvatarURL:  user.AvatarURL,
				IsVerified: user.IsVerified,
				CreatedAt:  user.CreatedAt,
				LastLogin:  user.LastLogin,
			},
		})
	}
}
