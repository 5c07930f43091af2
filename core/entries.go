package core

import (
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"

	"github.com/fahmaliyi/lockbox/command"
	"github.com/fahmaliyi/lockbox/vault"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// compilePattern accepts POSIX extended syntax only and matches without
// regard to case. An empty pattern matches everything and yields nil.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	if _, err := syntax.Parse(pattern, syntax.POSIX); err != nil {
		return nil, err
	}
	return regexp.Compile("(?i)" + pattern)
}

func (p *Processor) search(pattern string) bool {
	re, err := compilePattern(pattern)
	if err != nil {
		p.log.Debug("bad search pattern", zap.Error(err))
		p.alert(msgBadPattern)
		return true
	}
	return p.print(re, 0)
}

// print sends every entry whose information or secret matches re, or
// every entry when re is nil, followed by the match count. With pos set,
// only entry pos is sent and no count follows.
func (p *Processor) print(re *regexp.Regexp, pos int) bool {
	if p.list.Len() == 0 {
		p.alert(msgEmpty)
		return true
	}

	if pos != 0 {
		if _, err := p.show(nil, pos, p.list.At(pos)); err != nil {
			return p.fail(err)
		}
		return true
	}

	found := 0
	var err error
	p.list.Each(func(n int, e *vault.Entry) bool {
		var ok bool
		if ok, err = p.show(re, n, e); ok {
			found++
		}
		return err == nil
	})
	if err != nil {
		return p.fail(err)
	}
	p.alert("Number of entries found: %d", found)
	return true
}

// show decrypts entry n and sends it when it matches re.
func (p *Processor) show(re *regexp.Regexp, n int, e *vault.Entry) (bool, error) {
	info, sec, err := vault.Open(p.key, e)
	if err != nil {
		return false, errors.Wrapf(err, "entry %d", n)
	}
	defer vault.Zero(info)
	defer vault.Zero(sec)

	if re != nil && !re.Match(info) && !re.Match(sec) {
		return false, nil
	}
	p.ch.PushBack(command.UIShowEntry, strconv.Itoa(n), string(info), string(sec))
	return true, nil
}

// resolve parses an entry number and shows the entry. It returns 0 after
// alerting the user when no such entry exists.
func (p *Processor) resolve(arg string) int {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || !p.list.Valid(n) {
		p.alert(msgBadNumber)
		return 0
	}
	if !p.print(nil, n) {
		return 0
	}
	return n
}

func (p *Processor) add(information, secret []byte) bool {
	defer vault.Zero(information)
	defer vault.Zero(secret)

	e, err := vault.Seal(p.key, information, secret)
	if err != nil {
		return p.rejectFields(err)
	}
	p.list.Append(e)
	p.alert(msgEntryAdded)
	return p.save()
}

func (p *Processor) deleteConfirmed(answer string) bool {
	n := p.pending
	p.pending = 0
	if !strings.HasPrefix(answer, "y") {
		return true
	}
	if !p.list.Remove(n) {
		p.alert(msgBadNumber)
		return true
	}

	p.alert(msgEntryDeleted, p.list.Len())
	if !p.save() {
		return false
	}
	p.ch.PushBack(command.UIClearView)
	return true
}

func (p *Processor) edit(information, secret []byte) bool {
	defer vault.Zero(information)
	defer vault.Zero(secret)

	n := p.pending
	p.pending = 0
	if !p.list.Valid(n) {
		p.alert(msgBadNumber)
		return true
	}

	e, err := vault.Seal(p.key, information, secret)
	if err != nil {
		return p.rejectFields(err)
	}
	p.list.Replace(n, e)
	p.alert(msgEntryEdited, n)
	if !p.save() {
		return false
	}

	p.ch.PushBack(command.UIClearView)
	return p.print(nil, n)
}

// rejectFields turns a field check failure into an alert; anything else is
// fatal.
func (p *Processor) rejectFields(err error) bool {
	switch {
	case errors.Is(err, vault.ErrFieldTooLong):
		p.alert("Information and secret are limited to %d bytes", vault.MaxSize)
		return true
	case errors.Is(err, vault.ErrFieldInvalid):
		p.alert("Information and secret cannot contain NUL characters")
		return true
	}
	return p.fail(err)
}
