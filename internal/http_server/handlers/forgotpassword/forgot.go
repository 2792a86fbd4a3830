package forgotpassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"auth_service/internal/auth"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

type PasswordResetRequester interface {
	ForgotPassword(ctx context.Context, email string) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	requester PasswordResetRequester,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.forgotpassword.New"

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

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		if err := requester.ForgotPassword(r.Context(), req.Email); err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				log.Warn("user not found")

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("No account with this email"))

				return
			}

			log.Error("failed to issue reset token", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("reset email dispatched")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "Password reset email sent",
		})
	}
}
