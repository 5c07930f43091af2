package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExecutableAbsolute(t *testing.T) {
	exe := fakeExe(t, "binary")
	got, err := ResolveExecutable(exe)
	require.NoError(t, err)
	assert.Equal(t, exe, got)
}

func TestResolveExecutableRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "lockbox"), []byte("x"), 0700))
	t.Chdir(dir)

	got, err := ResolveExecutable("./bin/lockbox")
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "bin", "lockbox"), got)
}

func TestResolveExecutableFromPath(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "lockbox"), []byte("x"), 0700))
	require.NoError(t, os.Mkdir(filepath.Join(first, "lockbox"), 0700)) // a directory does not count
	t.Setenv("PATH", first+string(os.PathListSeparator)+second)

	got, err := ResolveExecutable("lockbox")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "lockbox"), got)
}

func TestResolveExecutableMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	for _, hint := range []string{"", "lockbox", "./nowhere/lockbox", "/nowhere/lockbox"} {
		_, err := ResolveExecutable(hint)
		assert.ErrorIs(t, err, ErrNoExecutable, hint)
	}
}

func TestHashExecutableChangesWithContent(t *testing.T) {
	a, err := hashExecutable(fakeExe(t, "one"))
	require.NoError(t, err)
	b, err := hashExecutable(fakeExe(t, "two"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
