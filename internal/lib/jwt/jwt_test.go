package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, err := issuer.Issue("a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, err := issuer.IssueTTL("a@x.com", -time.Second)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTampered(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, err := issuer.Issue("a@x.com")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyWrongKey(t *testing.T) {
	token, err := NewIssuer("secret-one", time.Minute).Issue("a@x.com")
	require.NoError(t, err)

	_, err = NewIssuer("secret-two", time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	for _, tokenStr := range []string{"", "not-a-token", "a.b"} {
		_, err := issuer.Verify(tokenStr)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tokenStr)
	}
}
