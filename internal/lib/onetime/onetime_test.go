package onetime

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsRandom(t *testing.T) {
	first, err := New()
	require.NoError(t, err)

	second, err := New()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewIsURLSafe(t *testing.T) {
	token, err := New()
	require.NoError(t, err)

	// tokens are embedded directly in mailed links
	assert.Equal(t, token, url.PathEscape(token))
	assert.Len(t, token, 43) // 32 bytes, base64url without padding
}

func TestHashToken(t *testing.T) {
	token, err := New()
	require.NoError(t, err)

	hash := HashToken(token)

	assert.Len(t, hash, 64)
	assert.NotContains(t, hash, token)
	assert.Equal(t, hash, HashToken(token))
}
