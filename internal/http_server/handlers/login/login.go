package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"auth_service/internal/auth"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger"
	"auth_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
	Pass  string `json:"password" validate:"required"`
}

type User struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	AvatarURL  *string `json:"avatar,omitempty"`
	IsVerified bool    `json:"is_email_verified"`
}

type Response struct {
	resp.Response
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserLoginer interface {
	Login(ctx context.Context, email, password string) (models.User, string, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	loginer UserLoginer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		user, token, err := loginer.Login(r.Context(), req.Email, req.Pass)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid email or password"))
			case errors.Is(err, auth.ErrSocialOnlyAccount):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("This account uses social login. Please sign in with Google"))
			default:
				log.Error("failed to login user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("User logged in", slog.Int64("id", user.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Token:    token,
			User: User{
				ID:         user.ID,
				Name:       user.Name,
				Email:      user.Email,
				AvatarURL:  user.AvatarURL,
				IsVerified: user.IsVerified,
			},
		})
	}
}
