package passhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong password", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("password123")
	require.NoError(t, err)

	second, err := Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("password123", first))
	assert.True(t, Verify("password123", second))
}

func TestVerifyMalformedHash(t *testing.T) {
	assert.False(t, Verify("password123", []byte("not-a-bcrypt-hash")))
	assert.False(t, Verify("password123", nil))
}
