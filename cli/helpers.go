package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fahmaliyi/lockbox/vault"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// DefaultExportFile is used when the user gives no file name to export to
// or import from.
const DefaultExportFile = "lockbox_export.txt"

// clipboardTTL is how long a copied secret stays in the clipboard.
const clipboardTTL = 30 * time.Second

// Menu lists the one-letter commands offered while idle.
const Menu = "[p]wd [l]ist [s]earch [a]dd [e]dit [d]el e[x]port [i]mport [c]opy [q]uit"

func orDefaultFile(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return DefaultExportFile
	}
	return name
}

var writeClipboard = clipboard.WriteAll

// copySecret puts secret in the clipboard and clears it after clipboardTTL.
func copySecret(secret string) error {
	write := writeClipboard
	if err := write(secret); err != nil {
		return err
	}
	time.AfterFunc(clipboardTTL, func() {
		write("")
	})
	return nil
}

// clearClipboard drops a copied secret that has not been cleared yet.
func clearClipboard(copied bool) {
	if copied {
		writeClipboard("")
	}
}

// checkEntry tells why an information and secret pair cannot be stored,
// or returns "" when it can.
func checkEntry(info, sec string) string {
	for _, f := range []string{info, sec} {
		switch err := vault.CheckField([]byte(f)); {
		case errors.Is(err, vault.ErrFieldTooLong):
			return fmt.Sprintf("Information and secret are limited to %d bytes", vault.MaxSize)
		case err != nil:
			return "Information and secret cannot contain NUL characters"
		}
	}
	return ""
}

// readLine reads one line from r without its line ending.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword prints prompt and reads a line from in, without echo when
// in is a terminal.
func ReadPassword(prompt string, in *bufio.Reader, f *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, prompt)
	if f != nil && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(pw), err
	}
	return readLine(in)
}
