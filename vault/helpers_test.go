package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPassword = "Abcdefgh1234"

// fakeExe writes content to a file standing in for the running binary.
func fakeExe(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lockbox")
	require.NoError(t, os.WriteFile(path, []byte(content), 0700))
	return path
}

func deriveKey(t *testing.T, password, exe string, masked bool) *SessionKey {
	t.Helper()
	k, err := DeriveKey([]byte(password), exe, masked)
	require.NoError(t, err)
	t.Cleanup(k.Destroy)
	return k
}

func rawKey(t *testing.T, k *SessionKey) []byte {
	t.Helper()
	var out []byte
	require.NoError(t, k.Use(func(key []byte) error {
		out = append([]byte(nil), key...)
		return nil
	}))
	return out
}
