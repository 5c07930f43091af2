// Package core is the business side of lockbox. A Processor owns the
// session key and the entry list, and serves the commands the UI worker
// puts on the command channel, one at a time.
package core

import (
	"fmt"
	"path/filepath"

	"github.com/fahmaliyi/lockbox/command"
	"github.com/fahmaliyi/lockbox/vault"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Alert texts shown by the UI.
const (
	msgNoKey        = "...but we don't have password!"
	msgHasKey       = "...but we have already a password!"
	msgPolicy       = "Password does not conform to password policy!"
	msgEmpty        = "There is no entry yet!"
	msgBadNumber    = "This entry number does not exist"
	msgBadPattern   = "Wrong search pattern!"
	msgConfirmDel   = "Please, confirm you want delete this entry [y/n]: "
	msgEntryAdded   = "One entry added"
	msgEntryDeleted = "Confirmation: one entry deleted, %d entries left."
	msgEntryEdited  = "Entry number %d edited"
)

// Processor serves core commands. All of its state is owned by the
// goroutine running Run.
type Processor struct {
	ch      *command.Channel
	store   *vault.Store
	exeHint string
	masked  bool
	log     *zap.Logger

	key     *vault.SessionKey
	list    *vault.List
	pending int // entry number resolved by the first phase of delete or edit
	fatal   error
}

// New returns a processor reading core commands from ch. exeHint is the
// name the program was started with, used to bind the key to the
// executable.
func New(ch *command.Channel, store *vault.Store, exeHint string, masked bool, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		ch:      ch,
		store:   store,
		exeHint: exeHint,
		masked:  masked,
		log:     log.With(zap.String("session", uuid.NewString())),
		list:    vault.NewList(),
	}
}

// Run serves commands until an exit command arrives. The command being
// served stays at the head of the channel until its replies are queued,
// so the UI only wakes up once the whole answer is available.
//
// Run returns the fatal error reported to the UI during the session, if any.
func (p *Processor) Run() error {
	p.log.Info("processor started", zap.String("data", p.store.Filename), zap.Bool("masked", p.masked))
	for {
		c := p.ch.Peek(command.SideCore)
		exit := p.handle(c)
		p.ch.Pop()
		if exit {
			p.log.Info("processor stopped")
			return p.fatal
		}
	}
}

// Close forgets the session key and wipes every entry.
func (p *Processor) Close() {
	p.key.Destroy()
	p.key = nil
	p.list.Clear()
}

// SignedIn reports whether the session key is established.
func (p *Processor) SignedIn() bool { return p.key != nil }

func (p *Processor) handle(c command.Command) (exit bool) {
	p.log.Debug("command", zap.Stringer("op", c.Op))

	loop := true
	switch {
	case c.Op == command.CoreExit:
		return true
	case c.Op == command.CoreKey:
		loop = p.establishKey(c.Arg(0))
	case p.key == nil:
		p.alert(msgNoKey)
	default:
		loop = p.serve(c)
	}
	if loop && p.fatal == nil {
		p.ch.PushBack(command.UILoop)
	}
	return false
}

// serve runs a command that needs the session key. It returns false when
// the reply already tells the UI what to do next.
func (p *Processor) serve(c command.Command) bool {
	switch c.Op {
	case command.CorePrint:
		return p.print(nil, 0)
	case command.CoreSearch:
		return p.search(c.Arg(0))
	case command.CoreAdd:
		return p.add([]byte(c.Arg(0)), []byte(c.Arg(1)))
	case command.CoreDeleteRequest:
		if p.pending = p.resolve(c.Arg(0)); p.pending == 0 {
			return true
		}
		p.ch.PushBack(command.UIAskYesNo, command.CoreDeleteConfirm.Arg(), msgConfirmDel)
		return false
	case command.CoreDeleteConfirm:
		return p.deleteConfirmed(c.Arg(0))
	case command.CoreEditRequest:
		if p.pending = p.resolve(c.Arg(0)); p.pending == 0 {
			return true
		}
		p.ch.PushBack(command.UIStartEdit)
		return false
	case command.CoreEditSubmit:
		return p.edit([]byte(c.Arg(0)), []byte(c.Arg(1)))
	case command.CoreExport:
		return p.export(c.Arg(0))
	case command.CoreImport:
		return p.importFrom(c.Arg(0))
	default:
		p.log.Warn("unexpected command", zap.Stringer("op", c.Op))
		return true
	}
}

// establishKey derives the session key from password and loads the data
// file with it. The key is kept only when the whole file checks out.
func (p *Processor) establishKey(password string) bool {
	if p.key != nil {
		p.alert(msgHasKey)
		return true
	}

	pw := []byte(password)
	defer vault.Zero(pw)

	if err := vault.CheckPassword(pw); err != nil {
		p.log.Info("password rejected", zap.Error(err))
		p.alert(msgPolicy)
		return true
	}

	exe, err := vault.ResolveExecutable(p.exeHint)
	if err != nil {
		return p.fail(err)
	}
	if canonical, err := filepath.EvalSymlinks(exe); err == nil {
		exe = canonical
	}
	p.alert("Reference used: %s", exe)

	k, err := vault.DeriveKey(pw, exe, p.masked)
	if err != nil {
		return p.fail(err)
	}

	list, err := p.store.Load(k)
	if err != nil {
		k.Destroy()
		return p.fail(err)
	}

	p.key, p.list = k, list
	if n := list.Len(); n > 0 {
		p.alert("Entries found in a local data file: %d", n)
	}
	p.log.Info("signed in", zap.Int("entries", list.Len()))
	p.ch.PushBack(command.UISignedIn)
	return true
}

func (p *Processor) save() bool {
	if err := p.store.Save(p.key, p.list); err != nil {
		return p.fail(err)
	}
	return true
}

func (p *Processor) alert(format string, a ...any) {
	msg := format
	if len(a) > 0 {
		msg = fmt.Sprintf(format, a...)
	}
	p.ch.PushBack(command.UIAlert, msg)
}

// fail reports a fatal error. The UI answers it with an exit command, so
// no loop message follows.
func (p *Processor) fail(err error) bool {
	p.log.Error("fatal error", zap.Error(err))
	if p.fatal == nil {
		p.fatal = err
	}
	p.ch.PushBack(command.UIError, err.Error())
	return false
}
