package register_test

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
	"auth_service/internal/http_server/handlers/register"
	"auth_service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registratorFunc func(ctx context.Context, name, email, password string) (models.User, string, error)

func (f registratorFunc) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	return f(ctx, name, email, password)
}

func doRegister(t *testing.T, registrator register.UserRegistrator, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := register.New(log, validator.New(), registrator)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec
}

func TestRegisterSuccess(t *testing.T) {
	registrator := registratorFunc(func(_ context.Context, name, email, _ string) (models.User, string, error) {
		return models.User{ID: 7, Name: name, Email: email}, "session-token", nil
	})

	rec := doRegister(t, registrator, `{"name":"Alice","email":"alice@x.com","password":"secret123"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body register.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session-token", body.Token)
	assert.Equal(t, int64(7), body.User.ID)
	assert.False(t, body.User.IsVerified)
}

func TestRegisterEmailTaken(t *testing.T) {
	registrator := registratorFunc(func(_ context.Context, _, _, _ string) (models.User, string, error) {
		return models.User{}, "", auth.ErrEmailTaken
	})

	rec := doRegister(t, registrator, `{"name":"Alice","email":"alice@x.com","password":"secret123"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

func TestRegisterShortPassword(t *testing.T) {
	registrator := registratorFunc(func(_ context.Context, _, _, _ string) (models.User, string, error) {
		t.Fatal("service must not be called")
		return models.User{}, "", nil
	})

	rec := doRegister(t, registrator, `{"name":"Alice","email":"alice@x.com","password":"abc"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too short")
}
