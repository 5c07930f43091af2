package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fahmaliyi/lockbox/command"
)

type state int

const (
	stateWaiting state = iota // a core command is being served
	stateMenu                 // waiting for a one-letter command
	stateInput                // filling the fields of a command
	stateDone
)

// field is one value the user is asked for before a command is sent.
type field struct {
	prompt string
	secret bool
	limit  int
}

// form collects fields one after the other, then builds the core command.
type form struct {
	fields  []field
	values  []string
	check   func(values []string) string // reason to ask again, if any
	send    func(values []string) (command.Opcode, []string)
	onAbort []string // arguments sent with the same command when the form is cancelled, if any
}

type commandMsg command.Command

type entry struct {
	number, information, secret string
}

type model struct {
	ch *command.Channel

	state    state
	signedIn bool
	entries  []entry
	alert    string
	fatal    string
	quitting bool // leave as soon as control comes back to the UI

	form  *form
	input textinput.Model

	lastSecret string
	copied     bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	msgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("0"))
	menuStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

func newModel(ch *command.Channel) model {
	return model{ch: ch, state: stateWaiting, input: textinput.New()}
}

// RunTUI runs the full-screen UI worker until the user quits or a fatal
// error is reported. The fatal message, if any, is returned so it can be
// printed once the terminal is restored.
func RunTUI(ch *command.Channel, opts ...tea.ProgramOption) (string, error) {
	p := tea.NewProgram(newModel(ch), append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m := final.(model)
	clearClipboard(m.copied)
	return m.fatal, nil
}

// waitCommand blocks until a UI command is at the head of the channel.
func waitCommand(ch *command.Channel) tea.Cmd {
	return func() tea.Msg {
		return commandMsg(ch.Take(command.SideUI))
	}
}

// --- Tea Model interface ---
func (m model) Init() tea.Cmd {
	return waitCommand(m.ch)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commandMsg:
		return m.handleCommand(command.Command(msg))
	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateInput:
			return m.updateInput(msg)
		case stateWaiting:
			if msg.String() == "ctrl+c" {
				m.quitting = true
			}
		}
	}
	return m, nil
}

func (m model) handleCommand(c command.Command) (model, tea.Cmd) {
	switch c.Op {
	case command.UILoop:
		if m.quitting {
			return m.quit()
		}
		m.state = stateMenu
		return m, nil

	case command.UIShowEntry:
		m.entries = append(m.entries, entry{c.Arg(0), c.Arg(1), c.Arg(2)})
		m.lastSecret = c.Arg(2)

	case command.UIClearView:
		m.entries = nil

	case command.UIAlert:
		m.alert = c.Arg(0)

	case command.UISignedIn:
		m.signedIn = true

	case command.UIAskYesNo:
		next, ok := command.ParseOpcode(c.Arg(0))
		if !ok {
			m.ch.PushBack(command.UILoop)
			break
		}
		return m.ask(&form{
			fields:  []field{{prompt: c.Arg(1), limit: 1}},
			send:    func(v []string) (command.Opcode, []string) { return next, v },
			onAbort: []string{"n"},
		})

	case command.UIStartEdit:
		return m.ask(entryForm(command.CoreEditSubmit))

	case command.UIError:
		m.fatal = c.Arg(0)
		m.state = stateDone
		m.ch.PushFront(command.CoreExit)
		return m, tea.Quit
	}
	return m, waitCommand(m.ch)
}

func (m model) quit() (model, tea.Cmd) {
	m.ch.PushBack(command.CoreExit)
	m.state = stateDone
	return m, tea.Quit
}

// send queues a core command and waits for the answer.
func (m model) send(op command.Opcode, args ...string) (model, tea.Cmd) {
	m.ch.PushBack(op, args...)
	m.state = stateWaiting
	return m, waitCommand(m.ch)
}

// --- Menu ---
func (m model) updateMenu(msg tea.KeyMsg) (model, tea.Cmd) {
	one := func(prompt string, op command.Opcode, adjust func(string) string) (model, tea.Cmd) {
		return m.ask(&form{
			fields: []field{{prompt: prompt}},
			send: func(v []string) (command.Opcode, []string) {
				if adjust != nil {
					v[0] = adjust(v[0])
				}
				return op, v
			},
		})
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()
	case "p":
		return m.ask(&form{
			fields: []field{{prompt: "Master password: ", secret: true}},
			send:   func(v []string) (command.Opcode, []string) { return command.CoreKey, v },
		})
	case "l":
		m.entries = nil
		m.alert = "Print list of entries"
		return m.send(command.CorePrint)
	case "s":
		m.entries = nil
		return one("Pattern: ", command.CoreSearch, nil)
	case "a":
		m.entries = nil
		return m.ask(entryForm(command.CoreAdd))
	case "d":
		m.entries = nil
		return one("Give entry number: ", command.CoreDeleteRequest, nil)
	case "e":
		m.entries = nil
		return one("Give entry number: ", command.CoreEditRequest, nil)
	case "x":
		return one("Give the name of the file to export to: ", command.CoreExport, orDefaultFile)
	case "i":
		return one("Give the name of the file to import from: ", command.CoreImport, orDefaultFile)
	case "c":
		if m.lastSecret == "" {
			m.alert = "Nothing to copy yet"
		} else if err := copySecret(m.lastSecret); err != nil {
			m.alert = "Clipboard unavailable: " + err.Error()
		} else {
			m.copied = true
			m.alert = fmt.Sprintf("Secret copied! (clears in %s)", clipboardTTL)
		}
	}
	return m, nil
}

// entryForm asks for an information and a secret, then sends them with op.
func entryForm(op command.Opcode) *form {
	return &form{
		fields: []field{{prompt: "Information: "}, {prompt: "Secret: "}},
		check:  func(v []string) string { return checkEntry(v[0], v[1]) },
		send:   func(v []string) (command.Opcode, []string) { return op, v },
	}
}

// --- Input ---
func (m model) ask(f *form) (model, tea.Cmd) {
	if m.quitting {
		if f.onAbort != nil {
			op, args := f.send(f.onAbort)
			return m.send(op, args...)
		}
		return m.quit()
	}
	m.form = f
	m.state = stateInput
	m.focus(f.fields[0])
	return m, textinput.Blink
}

func (m *model) focus(f field) {
	m.input.Reset()
	m.input.Prompt = f.prompt
	m.input.CharLimit = f.limit
	m.input.EchoMode = textinput.EchoNormal
	if f.secret {
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '*'
	}
	m.input.Focus()
}

func (m model) updateInput(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		f := m.form
		m.form = nil
		m.input.Reset()
		m.input.Blur()
		if f.onAbort != nil {
			op, args := f.send(f.onAbort)
			return m.send(op, args...)
		}
		m.state = stateMenu
		return m, nil
	case "enter":
		f := m.form
		f.values = append(f.values, m.input.Value())
		m.input.Reset()
		if len(f.values) < len(f.fields) {
			m.focus(f.fields[len(f.values)])
			return m, nil
		}
		if f.check != nil {
			if problem := f.check(f.values); problem != "" {
				m.alert = problem
				f.values = nil
				m.focus(f.fields[0])
				return m, nil
			}
		}
		m.form = nil
		m.input.Blur()
		op, args := f.send(f.values)
		return m.send(op, args...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// --- View ---
func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("lockbox"))
	if m.signedIn {
		b.WriteString("  " + msgStyle.Render("signed in"))
	}
	b.WriteString("\n" + menuStyle.Render(Menu) + "\n")

	switch m.state {
	case stateMenu:
		b.WriteString("Choose a command: ")
	case stateInput:
		b.WriteString(m.input.View())
	case stateWaiting:
		b.WriteString("...")
	}
	b.WriteString("\n\n")

	for _, e := range m.entries {
		b.WriteString(selectedStyle.Render("Entry n°"+e.number+":") + "\n")
		fmt.Fprintf(&b, " Information: \t%s\n Secret: \t%s\n", e.information, e.secret)
	}

	if m.fatal != "" {
		b.WriteString("\n" + errStyle.Render(m.fatal))
	} else if m.alert != "" {
		b.WriteString("\n" + msgStyle.Render(m.alert))
	}
	return b.String()
}
