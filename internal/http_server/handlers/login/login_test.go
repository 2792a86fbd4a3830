package login_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth_service/internal/auth"
	"auth_service/internal/http_server/handlers/login"
	"auth_service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginerFunc func(ctx context.Context, email, password string) (models.User, string, error)

func (f loginerFunc) Login(ctx context.Context, email, password string) (models.User, string, error) {
	return f(ctx, email, password)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doLogin(t *testing.T, loginer login.UserLoginer, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := login.New(discardLogger(), validator.New(), loginer)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec
}

func TestLoginSuccess(t *testing.T) {
	loginer := loginerFunc(func(_ context.Context, email, password string) (models.User, string, error) {
		assert.Equal(t, "alice@x.com", email)
		assert.Equal(t, "secret123", password)

		return models.User{ID: 1, Name: "Alice", Email: email}, "session-token", nil
	})

	rec := doLogin(t, loginer, `{"email":"alice@x.com","password":"secret123"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body login.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session-token", body.Token)
	assert.Equal(t, "alice@x.com", body.User.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	loginer := loginerFunc(func(_ context.Context, _, _ string) (models.User, string, error) {
		return models.User{}, "", auth.ErrInvalidCredentials
	})

	rec := doLogin(t, loginer, `{"email":"alice@x.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestLoginSocialOnly(t *testing.T) {
	loginer := loginerFunc(func(_ context.Context, _, _ string) (models.User, string, error) {
		return models.User{}, "", auth.ErrSocialOnlyAccount
	})

	rec := doLogin(t, loginer, `{"email":"bob@x.com","password":"whatever"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "social login")
}

func TestLoginInvalidBody(t *testing.T) {
	loginer := loginerFunc(func(_ context.Context, _, _ string) (models.User, string, error) {
		t.Fatal("service must not be called")
		return models.User{}, "", nil
	})

	rec := doLogin(t, loginer, `{"email":"not-an-email","password":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
