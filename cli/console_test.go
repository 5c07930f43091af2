package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fahmaliyi/lockbox/command"
	"github.com/fahmaliyi/lockbox/core"
	"github.com/fahmaliyi/lockbox/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runConsole plays input against a real processor and returns what the
// console printed and what the processor returned.
func runConsole(t *testing.T, data, input string) (string, error) {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "lockbox")
	require.NoError(t, os.WriteFile(exe, []byte("console test binary"), 0700))
	return runConsoleWith(t, exe, data, input)
}

func runConsoleWith(t *testing.T, exe, data, input string) (string, error) {
	t.Helper()
	ch := command.NewChannel()
	p := core.New(ch, vault.NewStore(data, nil), exe, false, nil)
	defer p.Close()

	done := make(chan error, 1)
	go func() { done <- p.Run() }()

	var out bytes.Buffer
	ch.PushBack(command.UILoop)
	require.NoError(t, NewConsole(ch, strings.NewReader(input), &out).Run())

	select {
	case err := <-done:
		return out.String(), err
	case <-time.After(5 * time.Second):
		t.Fatal("processor did not stop")
		return "", nil
	}
}

func TestConsoleSession(t *testing.T) {
	data := filepath.Join(t.TempDir(), "lockbox.data")
	input := strings.Join([]string{
		"p", "Abcdefgh1234",
		"a", "host", "pw1",
		"a", "db", "pw2",
		"l",
		"d", "1", "y",
		"l",
		"s", "DB",
		"e", "1", "database", "pw3",
		"q",
	}, "\n") + "\n"

	out, err := runConsole(t, data, input)
	require.NoError(t, err)

	for _, want := range []string{
		"Signed in.",
		"One entry added",
		"Entry n°1:\n Information: \thost\n Secret: \tpw1\n",
		"Entry n°2:\n Information: \tdb\n Secret: \tpw2\n",
		"Number of entries found: 2",
		"Please, confirm you want delete this entry [y/n]: ",
		"Confirmation: one entry deleted, 1 entries left.",
		"Entry n°1:\n Information: \tdb\n Secret: \tpw2\n",
		"Number of entries found: 1",
		"Entry number 1 edited",
		"Entry n°1:\n Information: \tdatabase\n Secret: \tpw3\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestConsoleEndOfInputStops(t *testing.T) {
	out, err := runConsole(t, filepath.Join(t.TempDir(), "lockbox.data"), "l\n")
	require.NoError(t, err)
	assert.Contains(t, out, "...but we don't have password!")
	assert.True(t, strings.HasSuffix(out, "Choose a command: "))
}

func TestConsoleIgnoresUnknownCommands(t *testing.T) {
	out, err := runConsole(t, filepath.Join(t.TempDir(), "lockbox.data"), "z\n\nc\nq\n")
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "Choose a command: "))
	assert.Contains(t, out, "Nothing to copy yet")
}

func TestConsoleExportDefaultsFileName(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := runConsole(t, "lockbox.data", "p\nAbcdefgh1234\na\nhost\npw1\nx\n\nq\n")
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries has been exported in "+DefaultExportFile)

	raw, err := os.ReadFile(DefaultExportFile)
	require.NoError(t, err)
	assert.Equal(t, "host\npw1\n", string(raw))
}

func TestConsoleShowsFatalError(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "lockbox")
	require.NoError(t, os.WriteFile(exe, []byte("console test binary"), 0700))
	data := filepath.Join(dir, "lockbox.data")

	_, err := runConsoleWith(t, exe, data, "p\nAbcdefgh1234\na\nhost\npw1\nq\n")
	require.NoError(t, err)

	out, err := runConsoleWith(t, exe, data, "p\nWrongpassword1\nl\nq\n")
	assert.ErrorIs(t, err, vault.ErrIntegrity)
	assert.Contains(t, out, "error: ")
	assert.NotContains(t, out, "Number of entries found")
}

// clipboardLog records clipboard writes. The delayed clear of a copy may
// still run after the test that made it.
type clipboardLog struct {
	mu     sync.Mutex
	writes []string
}

func (l *clipboardLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.writes...)
}

func stubClipboard(t *testing.T) *clipboardLog {
	t.Helper()
	l := &clipboardLog{}
	saved := writeClipboard
	writeClipboard = func(s string) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.writes = append(l.writes, s)
		return nil
	}
	t.Cleanup(func() { writeClipboard = saved })
	return l
}

func TestConsoleClearsClipboardOnExit(t *testing.T) {
	for name, tail := range map[string]string{
		"quit":         "q\n",
		"end of input": "",
	} {
		t.Run(name, func(t *testing.T) {
			writes := stubClipboard(t)
			input := "p\nAbcdefgh1234\na\nhost\npw1\nl\nc\n" + tail

			out, err := runConsole(t, filepath.Join(t.TempDir(), "lockbox.data"), input)
			require.NoError(t, err)
			assert.Contains(t, out, "Secret copied to clipboard.")
			assert.Equal(t, []string{"pw1", ""}, writes.all())
		})
	}
}

func TestConsoleLeavesClipboardAloneWithoutCopy(t *testing.T) {
	writes := stubClipboard(t)
	_, err := runConsole(t, filepath.Join(t.TempDir(), "lockbox.data"), "q\n")
	require.NoError(t, err)
	assert.Empty(t, writes.all())
}

func TestConsoleChecksEntryFields(t *testing.T) {
	long := strings.Repeat("x", vault.MaxSize+1)
	input := strings.Join([]string{
		"p", "Abcdefgh1234",
		"a", long, "pw1", "host", "pw1",
		"l", "q",
	}, "\n") + "\n"

	out, err := runConsole(t, filepath.Join(t.TempDir(), "lockbox.data"), input)
	require.NoError(t, err)
	assert.Contains(t, out, "Information and secret are limited to 256 bytes")
	assert.Equal(t, 1, strings.Count(out, "One entry added"))
	assert.Contains(t, out, "Entry n°1:\n Information: \thost\n Secret: \tpw1\n")
	assert.Contains(t, out, "Number of entries found: 1")
}

func TestCheckEntry(t *testing.T) {
	assert.Empty(t, checkEntry("host", ""))
	assert.Empty(t, checkEntry(strings.Repeat("x", vault.MaxSize), "pw"))
	assert.Contains(t, checkEntry("host", strings.Repeat("x", vault.MaxSize+1)), "limited to 256 bytes")
	assert.Contains(t, checkEntry("ho\x00st", "pw"), "NUL")
}
