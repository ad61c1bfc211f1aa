package cryptox

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestNewSealer_RejectsShortKey(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	require.ErrorIs(t, err, ErrKeySize)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s := newTestSealer(t)
	ad := []byte("lifelink_token")

	sealed, err := s.Seal([]byte("eyJhbGciOi"), ad)
	require.NoError(t, err)
	require.False(t, bytes.Contains(sealed, []byte("eyJhbGciOi")))

	pt, err := s.Open(sealed, ad)
	require.NoError(t, err)
	require.Equal(t, "eyJhbGciOi", string(pt))
}

func TestSeal_FreshNonceEachTime(t *testing.T) {
	s := newTestSealer(t)

	a, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestOpen_Failures(t *testing.T) {
	s := newTestSealer(t)
	sealed, err := s.Seal([]byte("token"), []byte("ad"))
	require.NoError(t, err)

	_, err = s.Open(sealed, []byte("other"))
	require.ErrorIs(t, err, ErrCiphertext)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF
	_, err = s.Open(tampered, []byte("ad"))
	require.ErrorIs(t, err, ErrCiphertext)

	_, err = s.Open([]byte{1, 2, 3}, nil)
	require.ErrorIs(t, err, ErrCiphertext)

	other := newTestSealer(t)
	_, err = other.Open(sealed, []byte("ad"))
	require.ErrorIs(t, err, ErrCiphertext)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "lifelink.key")

	k1, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	require.Len(t, k1, KeySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	k2, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	require.Equal(t, k1, k2)
}

func TestLoadOrCreateKey_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifelink.key")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o600))

	_, err := LoadOrCreateKey(path)
	require.ErrorIs(t, err, ErrKeySize)
}
