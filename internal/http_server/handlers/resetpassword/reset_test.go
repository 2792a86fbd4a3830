package resetpassword_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth_service/internal/auth"
	"auth_service/internal/http_server/handlers/resetpassword"
	"auth_service/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resetterFunc func(ctx context.Context, token, newPassword string) (models.User, string, error)

func (f resetterFunc) ResetPassword(ctx context.Context, token, newPassword string) (models.User, string, error) {
	return f(ctx, token, newPassword)
}

func doReset(t *testing.T, resetter resetpassword.PasswordResetter, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Put("/reset-password/{token}", resetpassword.New(log, validator.New(), resetter))

	req := httptest.NewRequest(http.MethodPut, "/reset-password/"+token, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestResetPasswordSuccess(t *testing.T) {
	resetter := resetterFunc(func(_ context.Context, token, newPassword string) (models.User, string, error) {
		assert.Equal(t, "tok123", token)
		assert.Equal(t, "new-password", newPassword)

		return models.User{ID: 1, Email: "alice@x.com"}, "fresh-session", nil
	})

	rec := doReset(t, resetter, "tok123", `{"password":"new-password"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fresh-session")
}

func TestResetPasswordInvalidToken(t *testing.T) {
	resetter := resetterFunc(func(_ context.Context, _, _ string) (models.User, string, error) {
		return models.User{}, "", auth.ErrInvalidOrExpiredToken
	})

	rec := doReset(t, resetter, "stale-token", `{"password":"new-password"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired")
}

func TestResetPasswordShortPassword(t *testing.T) {
	resetter := resetterFunc(func(_ context.Context, _, _ string) (models.User, string, error) {
		t.Fatal("service must not be called")
		return models.User{}, "", nil
	})

	rec := doReset(t, resetter, "tok123", `{"password":"abc"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
