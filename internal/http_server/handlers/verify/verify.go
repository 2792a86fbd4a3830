package verify

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
)

type Response struct {
	resp.Response
	Message string `json:"message"`
}

type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) (models.User, error)
}

// New handles GET /verify-email/{token}.
func New(
	log *slog.Logger,
	verifier EmailVerifier,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := chi.URLParam(r, "token")
		if token == "" {
			log.Warn("missing verification token")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Missing token"))

			return
		}

		user, err := verifier.VerifyEmail(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				log.Warn("invalid verification token")

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Verification token is invalid"))

				return
			}

			log.Error("failed to verify email", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("email verified", slog.Int64("uid", user.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "Email verified successfully",
		})
	}
}
