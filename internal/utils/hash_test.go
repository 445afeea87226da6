package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyHash(t *testing.T) {
	hashed, err := GenerateHash("hunter2")
	require.NoError(t, err)
	assert.Contains(t, hashed, "$argon2id$")

	ok, err := VerifyHash(hashed, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyHash(hashed, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateHash_UniqueSalt(t *testing.T) {
	h1, err := GenerateHash("same-password")
	require.NoError(t, err)
	h2, err := GenerateHash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyHash_MalformedHash(t *testing.T) {
	ok, err := VerifyHash("not-a-valid-hash", "anything")
	assert.Error(t, err)
	assert.False(t, ok)
}
