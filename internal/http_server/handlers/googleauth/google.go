package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	sl "auth_service/internal/lib/logger"
	"auth_service/internal/models"
	"auth_service/internal/oauth"

	"github.com/go-chi/chi/middleware"
)

const stateCookieName = "oauthstate"

type CodeExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (oauth.Profile, error)
}

type OAuthResolver interface {
	ResolveOAuth(ctx context.Context, profile oauth.Profile) (models.User, string, error)
}

// NewLogin handles GET /auth/google: sets the anti-CSRF state cookie and
// redirects the browser to the Google consent screen.
func NewLogin(
	log *slog.Logger,
	client CodeExchanger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.googleauth.NewLogin"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		state, err := generateState()
		if err != nil {
			log.Error("failed to generate oauth state", sl.Err(err))

			http.Error(w, "Internal error", http.StatusInternalServerError)

			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Expires:  time.Now().Add(10 * time.Minute),
			HttpOnly: true,
			Path:     "/",
		})

		http.Redirect(w, r, client.AuthCodeURL(state), http.StatusTemporaryRedirect)
	}
}

// NewCallback handles GET /auth/google/callback. Every failure collapses to a
// redirect to the frontend's login error page; no provider detail reaches the
// browser.
func NewCallback(
	log *slog.Logger,
	client CodeExchanger,
	resolver OAuthResolver,
	frontendURL string,
) http.HandlerFunc {
	failURL := frontendURL + "/login?error=oauth"
	successURL := frontendURL + "/auth/callback"

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.googleauth.NewCallback"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		stateCookie, err := r.Cookie(stateCookieName)
		if err != nil || r.FormValue("state") != stateCookie.Value {
			log.Warn("oauth state mismatch")

			http.SetCookie(w, &http.Cookie{Name: stateCookieName, MaxAge: -1, Path: "/"})
			http.Redirect(w, r, failURL, http.StatusTemporaryRedirect)

			return
		}

		code := r.FormValue("code")
		if code == "" {
			log.Warn("missing authorization code")

			http.Redirect(w, r, failURL, http.StatusTemporaryRedirect)

			return
		}

		profile, err := client.Exchange(r.Context(), code)
		if err != nil {
			log.Error("code exchange failed", sl.Err(err))

			http.Redirect(w, r, failURL, http.StatusTemporaryRedirect)

			return
		}

		user, token, err := resolver.ResolveOAuth(r.Context(), profile)
		if err != nil {
			log.Error("failed to resolve oauth identity", sl.Err(err))

			http.Redirect(w, r, failURL, http.StatusTemporaryRedirect)

			return
		}

		log.Info("oauth login", slog.Int64("uid", user.ID))

		http.Redirect(w, r, successURL+"?token="+url.QueryEscape(token), http.StatusTemporaryRedirect)
	}
}

func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
