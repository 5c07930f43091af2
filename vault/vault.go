package vault

import (
	"encoding/binary"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store owns the data file: a sequence of fixed size records, the first of
// which is the special record carrying the format version.
//
// Saving is not crash-atomic. The file is truncated and rewritten in
// place; the copy taken to Filename+".old" just before is the only way
// back after an interrupted save.
type Store struct {
	Filename string
	Version  string

	log *zap.Logger
	now func() time.Time
}

func NewStore(filename string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		Filename: filename,
		Version:  Version,
		log:      log,
		now:      time.Now,
	}
}

// BackupName is the path of the copy taken before every overwrite.
func (s *Store) BackupName() string { return s.Filename + BackupExt }

// Load reads and checks the whole data file under k. A missing file is a
// first run and yields an empty list. The first record failing its
// integrity check aborts the load: nothing is recovered from a file that
// does not authenticate under this key.
func (s *Store) Load(k *SessionKey) (*List, error) {
	f, err := os.Open(s.Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Info("no data file yet", zap.String("path", s.Filename))
			return NewList(), nil
		}
		return nil, errors.Wrapf(err, "cannot open data file %q", s.Filename)
	}
	defer f.Close()

	if err := s.checkSpecial(k, f); err != nil {
		return nil, err
	}

	list := NewList()
	buf := make([]byte, RecordSize)
	defer zero(buf)
	for n := 1; ; n++ {
		_, err := io.ReadFull(f, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrIntegrity, "record %d is truncated", n)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read data file %q", s.Filename)
		}

		e := &Entry{}
		if err := e.UnmarshalBinary(buf); err != nil {
			return nil, err
		}
		info, sec, err := Open(k, e)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", n)
		}
		zero(info)
		zero(sec)
		list.Append(e)
	}

	s.log.Info("data file loaded", zap.String("path", s.Filename), zap.Int("entries", list.Len()))
	return list, nil
}

func (s *Store) checkSpecial(k *SessionKey, r io.Reader) error {
	buf := make([]byte, RecordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return errors.Wrapf(err, "impossible to read the special entry from data file %q", s.Filename)
	}
	var e Entry
	if err := e.UnmarshalBinary(buf); err != nil {
		return err
	}

	info, sec := field(e.Information), field(e.Secret)
	var sum [HashLen]byte
	err := k.Use(func(key []byte) error {
		hmacFields(key, &info, &sec, sum[:])
		return nil
	})
	if err != nil {
		return err
	}

	found := string(info.bytes())
	return classifySpecial(sum != e.Hash, found != s.Version, found, s.Version)
}

// classifySpecial decides what a special record says about the file. A
// matching tag authenticates the version too, so the version only matters
// when the tag does not match.
func classifySpecial(hashMismatch, versionMismatch bool, found, current string) error {
	switch {
	case hashMismatch && versionMismatch:
		return &VersionError{Found: found, Current: current}
	case hashMismatch:
		return ErrIntegrity
	default:
		return nil
	}
}

// specialRecord builds the version record: version tag and creation time in
// clear, tagged with the session key.
func (s *Store) specialRecord(k *SessionKey) (*Entry, error) {
	var info, sec field
	copy(info[:], s.Version)
	binary.LittleEndian.PutUint64(sec[:8], uint64(s.now().Unix()))

	e := &Entry{Information: info, Secret: sec}
	err := k.Use(func(key []byte) error {
		hmacFields(key, &info, &sec, e.Hash[:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Save writes the special record then every entry of list. An existing
// data file is first copied to BackupName. A failed write aborts the save
// and leaves the data file as far as it got.
func (s *Store) Save(k *SessionKey, list *List) error {
	special, err := s.specialRecord(k)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.Filename, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if errors.Is(err, fs.ErrExist) {
		if err := s.backup(); err != nil {
			return err
		}
		f, err = os.OpenFile(s.Filename, os.O_WRONLY|os.O_TRUNC, 0600)
	}
	if err != nil {
		return errors.Wrapf(err, "impossible to create or open data file %q", s.Filename)
	}
	defer f.Close()

	if err := writeRecord(f, special); err != nil {
		return errors.Wrapf(err, "impossible to write the special entry in data file %q", s.Filename)
	}

	var werr error
	list.Each(func(n int, e *Entry) bool {
		if err := writeRecord(f, e); err != nil {
			werr = errors.Wrapf(err, "impossible to write record %d in data file %q", n, s.Filename)
			return false
		}
		return true
	})
	if werr != nil {
		return werr
	}

	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "cannot close data file %q", s.Filename)
	}
	s.log.Debug("data file saved", zap.String("path", s.Filename), zap.Int("entries", list.Len()))
	return nil
}

// backup copies the data file byte for byte over any previous backup.
func (s *Store) backup() error {
	src, err := os.Open(s.Filename)
	if err != nil {
		return errors.Wrapf(err, "impossible to create a backup of %q", s.Filename)
	}
	defer src.Close()

	name := s.BackupName()
	dst, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(err, "impossible to create backup file %q", name)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrapf(err, "impossible to write in backup file %q", name)
	}
	if err := dst.Close(); err != nil {
		return errors.Wrapf(err, "impossible to write in backup file %q", name)
	}
	s.log.Debug("data file backed up", zap.String("backup", name))
	return nil
}

func writeRecord(w io.Writer, e *Entry) error {
	b, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	n, err := w.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	return err
}
