package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSigningKey_RoundTrip(t *testing.T) {
	key, err := GenerateSigningKey()
	require.NoError(t, err)
	data, err := EncodeSigningKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	got, err := LoadSigningKey(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(got))
}

func TestParseSigningKey_PKCS8(t *testing.T) {
	key, err := GenerateSigningKey()
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	got, err := ParseSigningKey(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	require.NoError(t, err)
	assert.True(t, key.Equal(got))
}

func TestParseSigningKey_Rejects(t *testing.T) {
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(p384)
	require.NoError(t, err)

	for name, data := range map[string][]byte{
		"not pem":    []byte("garbage"),
		"wrong type": pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}}),
		"bad der":    pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1}}),
		"p384":       pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}),
	} {
		_, err := ParseSigningKey(data)
		assert.ErrorIs(t, err, ErrBadSigningKey, name)
	}
}

func TestLoadSigningKey_Missing(t *testing.T) {
	_, err := LoadSigningKey(filepath.Join(t.TempDir(), "nope.pem"))
	assert.Error(t, err)
}
