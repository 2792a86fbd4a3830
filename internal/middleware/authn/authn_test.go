package authn_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "auth_service/internal/lib/jwt"
	"auth_service/internal/middleware/authn"
	"auth_service/internal/models"
	"auth_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFunc func(ctx context.Context, email string) (models.User, error)

func (f providerFunc) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return f(ctx, email)
}

func newProtected(t *testing.T, issuer *jwtlib.Issuer, provider authn.UserProvider) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := authn.UserFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(user.Email))
	})

	return authn.New(log, issuer, provider)(inner)
}

func TestAuthnAllowsValidToken(t *testing.T) {
	issuer := jwtlib.NewIssuer("secret", time.Minute)
	provider := providerFunc(func(_ context.Context, email string) (models.User, error) {
		return models.User{ID: 1, Email: email}, nil
	})

	token, err := issuer.Issue("alice@x.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	newProtected(t, issuer, provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@x.com", rec.Body.String())
}

func TestAuthnMissingHeader(t *testing.T) {
	issuer := jwtlib.NewIssuer("secret", time.Minute)
	provider := providerFunc(func(_ context.Context, _ string) (models.User, error) {
		t.Fatal("store must not be called")
		return models.User{}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()

	newProtected(t, issuer, provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthnExpiredToken(t *testing.T) {
	issuer := jwtlib.NewIssuer("secret", time.Minute)
	provider := providerFunc(func(_ context.Context, _ string) (models.User, error) {
		t.Fatal("store must not be called")
		return models.User{}, nil
	})

	token, err := issuer.IssueTTL("alice@x.com", -time.Second)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	newProtected(t, issuer, provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthnUnknownSubject(t *testing.T) {
	issuer := jwtlib.NewIssuer("secret", time.Minute)
	provider := providerFunc(func(_ context.Context, _ string) (models.User, error) {
		return models.User{}, storage.ErrUserNotFound
	})

	token, err := issuer.Issue("ghost@x.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	newProtected(t, issuer, provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
