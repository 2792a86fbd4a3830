package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"auth_service/internal/auth"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger"
	"auth_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Pass  string `json:"password" validate:"required,min=6"`
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

type UserRegistrator interface {
	Register(ctx context.Context, name, email, password string) (models.User, string, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registrator UserRegistrator,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, token, err := registrator.Register(ctx, req.Name, req.Email, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				log.Warn("email already registered")

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("This email is already registered"))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User registered", slog.Int64("id", user.ID))

		render.Status(r, http.StatusCreated)
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
