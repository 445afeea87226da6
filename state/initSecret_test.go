package state

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKeyPair(t *testing.T) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	dir := t.TempDir()
	privPath = filepath.Join(dir, "private.pem")
	pubPath = filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0644))
	return privPath, pubPath
}

func TestInitSecret_Success(t *testing.T) {
	privPath, pubPath := writeTestKeyPair(t)

	secret, err := InitSecret(privPath, pubPath)
	require.NoError(t, err)
	require.NotNil(t, secret)
	require.NotNil(t, secret.Private)
	require.NotNil(t, secret.Public)

	assert.True(t, secret.Private.PublicKey.Equal(secret.Public), "key pair must match")
}

func TestInitSecret_MissingFiles(t *testing.T) {
	dir := t.TempDir()

	secret, err := InitSecret(filepath.Join(dir, "nope.pem"), filepath.Join(dir, "nope-pub.pem"))
	assert.Error(t, err)
	assert.Nil(t, secret)
}

func TestInitSecret_InvalidPEM(t *testing.T) {
	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privPath, []byte("not a key"), 0600))
	require.NoError(t, os.WriteFile(pubPath, []byte("not a key"), 0644))

	secret, err := InitSecret(privPath, pubPath)
	assert.Error(t, err)
	assert.Nil(t, secret)
}
