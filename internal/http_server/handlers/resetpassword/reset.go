package resetpassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"auth_service/internal/auth"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger"
	"auth_service/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Pass string `json:"password" validate:"required,min=6"`
}

type Response struct {
	resp.Response
	Token string `json:"token"`
}

type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, newPassword string) (models.User, string, error)
}

// New handles PUT /reset-password/{token}. The one-time token travels in the
// URL, the new password in the body.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	resetter PasswordResetter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resetpassword.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := chi.URLParam(r, "token")
		if token == "" {
			log.Warn("missing reset token")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Missing token"))

			return
		}

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		user, sessionToken, err := resetter.ResetPassword(r.Context(), token, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidOrExpiredToken) {
				log.Warn("invalid or expired reset token")

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Token is invalid or expired"))

				return
			}

			log.Error("failed to reset password", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("password reset", slog.Int64("id", user.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Token:    sessionToken,
		})
	}
}
