package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	assert.True(t, VerifyPassword("correct horse", hash, salt))
	assert.False(t, VerifyPassword("wrong horse", hash, salt))
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	h1, s1, err := HashPassword("same")
	require.NoError(t, err)
	h2, s2, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_MalformedInputs(t *testing.T) {
	hash, salt, err := HashPassword("pw")
	require.NoError(t, err)

	assert.False(t, VerifyPassword("pw", hash, "zz"))
	assert.False(t, VerifyPassword("pw", "not-hex", salt))
}
