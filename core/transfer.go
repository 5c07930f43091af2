package core

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/fahmaliyi/lockbox/vault"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// export writes every entry in clear to path, information then secret,
// one per line. Newlines inside a field are written as is.
func (p *Processor) export(path string) bool {
	if p.list.Len() == 0 {
		p.alert(msgEmpty)
		return true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		p.log.Warn("export failed", zap.String("path", path), zap.Error(err))
		p.alert("Impossible to create or open the exportation file (%s)", path)
		return true
	}

	n, err := p.writeEntries(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	var oerr *openError
	switch {
	case errors.As(err, &oerr):
		if rerr := os.Remove(path); rerr != nil {
			p.log.Warn("cannot remove partial export", zap.String("path", path), zap.Error(rerr))
		}
		return p.fail(oerr.err)
	case err != nil:
		p.log.Warn("export failed", zap.String("path", path), zap.Error(err))
		p.alert("Impossible to write to the exportation file (%s)", path)
		return true
	}

	p.log.Info("entries exported", zap.Int("count", n), zap.String("path", path))
	p.alert("%d entries has been exported in %s", n, path)
	return true
}

// openError marks a decryption failure while exporting, as opposed to a
// write failure on the export file.
type openError struct{ err error }

func (e *openError) Error() string { return e.err.Error() }

func (p *Processor) writeEntries(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	var err error
	p.list.Each(func(pos int, e *vault.Entry) bool {
		info, sec, oerr := vault.Open(p.key, e)
		if oerr != nil {
			err = &openError{errors.Wrapf(oerr, "entry %d", pos)}
			return false
		}
		defer vault.Zero(info)
		defer vault.Zero(sec)

		for _, field := range [][]byte{info, sec} {
			bw.Write(field)
			bw.WriteByte('\n')
		}
		n++
		return true
	})
	if err != nil {
		return n, err
	}
	// bufio.Writer keeps the first write error and reports it on Flush.
	return n, bw.Flush()
}

// importFrom reads line pairs from path and adds one entry per pair. It
// stops at end of file, at the first read error, or at the first line
// that does not fit an entry field. The data file is saved only when
// something was imported.
func (p *Processor) importFrom(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		p.log.Warn("import failed", zap.String("path", path), zap.Error(err))
		p.alert("Impossible to open the importation file (%s)", path)
		return true
	}
	defer f.Close()

	r := bufio.NewReader(f)
	n := 0
	for {
		info, ok := readLine(r)
		if !ok {
			break
		}
		sec, ok := readLine(r)
		if !ok {
			vault.Zero(info)
			break
		}
		e, err := vault.Seal(p.key, info, sec)
		vault.Zero(info)
		vault.Zero(sec)
		if err != nil {
			p.log.Warn("import stopped", zap.Int("entry", n+1), zap.Error(err))
			break
		}
		p.list.Append(e)
		n++
	}

	p.log.Info("entries imported", zap.Int("count", n), zap.String("path", path))
	p.alert("%d entries imported from %s", n, path)
	if n == 0 {
		return true
	}
	return p.save()
}

// readLine returns the next line without its newline. A last line with
// no newline still counts.
func readLine(r *bufio.Reader) ([]byte, bool) {
	line, err := r.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		vault.Zero(line)
		return nil, false
	}
	return bytes.TrimSuffix(line, []byte{'\n'}), true
}
