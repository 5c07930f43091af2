package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fahmaliyi/lockbox/command"
)

// Console is the line-oriented UI worker. It reads commands and fields one
// line at a time, which suits pipes and dumb terminals.
type Console struct {
	ch  *command.Channel
	in  *bufio.Reader
	tty *os.File
	out io.Writer

	lastSecret string
	copied     bool
}

// NewConsole returns a console reading from in and writing to out. When in
// is a terminal, the password is read without echo.
func NewConsole(ch *command.Channel, in io.Reader, out io.Writer) *Console {
	c := &Console{ch: ch, in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok {
		c.tty = f
	}
	return c
}

// Run serves UI commands until the user quits, the input ends, or a fatal
// error has been shown.
func (c *Console) Run() error {
	defer func() { clearClipboard(c.copied) }()

	for {
		cmd := c.ch.Take(command.SideUI)
		switch cmd.Op {
		case command.UILoop:
			if !c.interact() {
				return nil
			}

		case command.UIShowEntry:
			fmt.Fprintf(c.out, "Entry n°%s:\n Information: \t%s\n Secret: \t%s\n",
				cmd.Arg(0), cmd.Arg(1), cmd.Arg(2))
			c.lastSecret = cmd.Arg(2)

		case command.UIClearView:
			fmt.Fprintln(c.out)

		case command.UIAlert:
			fmt.Fprintln(c.out, cmd.Arg(0))

		case command.UISignedIn:
			fmt.Fprintln(c.out, "Signed in.")

		case command.UIAskYesNo:
			next, ok := command.ParseOpcode(cmd.Arg(0))
			answer, err := c.ask(cmd.Arg(1))
			if err != nil {
				answer = "n"
			}
			if !ok {
				c.ch.PushBack(command.UILoop)
				continue
			}
			c.ch.PushBack(next, strings.TrimSpace(answer))

		case command.UIStartEdit:
			info, sec, err := c.askEntry()
			if err != nil {
				c.ch.PushBack(command.CoreExit)
				return nil
			}
			c.ch.PushBack(command.CoreEditSubmit, info, sec)

		case command.UIError:
			fmt.Fprintln(c.out, "error:", cmd.Arg(0))
			c.ch.PushFront(command.CoreExit)
			return nil
		}
	}
}

// interact prompts for the next command and queues it. It returns false
// once the user has asked to quit.
func (c *Console) interact() bool {
	fmt.Fprintln(c.out, Menu)
	for {
		line, err := c.ask("Choose a command: ")
		if err != nil {
			c.ch.PushBack(command.CoreExit)
			return false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var (
			op   command.Opcode
			args []string
		)
		switch line[0] {
		case 'p':
			var pw string
			pw, err = ReadPassword("Master password: ", c.in, c.tty, c.out)
			op, args = command.CoreKey, []string{pw}
		case 'l':
			op = command.CorePrint
		case 's':
			var pattern string
			pattern, err = c.ask("Pattern: ")
			op, args = command.CoreSearch, []string{pattern}
		case 'a':
			var info, sec string
			info, sec, err = c.askEntry()
			op, args = command.CoreAdd, []string{info, sec}
		case 'd', 'e':
			var n string
			n, err = c.ask("Give entry number: ")
			op, args = command.CoreDeleteRequest, []string{n}
			if line[0] == 'e' {
				op = command.CoreEditRequest
			}
		case 'x':
			var name string
			name, err = c.ask("Give the name of the file to export to: ")
			op, args = command.CoreExport, []string{orDefaultFile(name)}
		case 'i':
			var name string
			name, err = c.ask("Give the name of the file to import from: ")
			op, args = command.CoreImport, []string{orDefaultFile(name)}
		case 'c':
			c.copyLastSecret()
			continue
		case 'q':
			c.ch.PushBack(command.CoreExit)
			return false
		default:
			continue
		}

		if err != nil {
			c.ch.PushBack(command.CoreExit)
			return false
		}
		c.ch.PushBack(op, args...)
		return true
	}
}

func (c *Console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	return readLine(c.in)
}

// askEntry reads an information and a secret, asking again until both
// can be stored.
func (c *Console) askEntry() (info, sec string, err error) {
	for {
		if info, err = c.ask("Information: "); err != nil {
			return "", "", err
		}
		if sec, err = c.ask("Secret: "); err != nil {
			return "", "", err
		}
		problem := checkEntry(info, sec)
		if problem == "" {
			return info, sec, nil
		}
		fmt.Fprintln(c.out, problem)
	}
}

func (c *Console) copyLastSecret() {
	if c.lastSecret == "" {
		fmt.Fprintln(c.out, "Nothing to copy yet")
		return
	}
	if err := copySecret(c.lastSecret); err != nil {
		fmt.Fprintln(c.out, "Clipboard unavailable:", err)
		return
	}
	c.copied = true
	fmt.Fprintf(c.out, "Secret copied to clipboard. Clearing in %s...\n", clipboardTTL)
}
