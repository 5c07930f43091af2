package vault

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	KeyLen     = 32
	IVLen      = 16
	HashLen    = 32
	MaxSize    = 16 * IVLen // fixed length of an information or secret field
	RecordSize = IVLen + MaxSize + IVLen + MaxSize + HashLen

	MinPasswordLen = 12
	MaxPasswordLen = 64 // size of the stretching buffer
	StretchRounds  = 10000

	// Version is written in the special record of every saved data file.
	Version   = "v1.4.0"
	BackupExt = ".old"
)

var (
	ErrPasswordPolicy = errors.New("password does not conform to password policy")
	ErrIntegrity      = errors.New("wrong password or data file has been corrupted")
	ErrFieldTooLong   = errors.Errorf("field longer than %d bytes", MaxSize)
	ErrFieldInvalid   = errors.New("field contains a NUL byte")
	ErrNoExecutable   = errors.New("impossible to get access to the executable file")
	ErrNoKey          = errors.New("session key is not established")
	ErrTooSoon        = errors.New("data file accessed too recently")
)

// VersionError reports a data file whose special record fails the integrity
// check and carries another version tag than this build.
type VersionError struct {
	Found   string
	Current string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("a previous version (%q) has been detected for the data file, "+
		"the current version used is %q: the data must be migrated manually", e.Found, e.Current)
}

// Entry is one encrypted record. Information and Secret hold ciphertext.
type Entry struct {
	IVInfo      [IVLen]byte
	Information [MaxSize]byte
	IVSecret    [IVLen]byte
	Secret      [MaxSize]byte
	Hash        [HashLen]byte
}

// MarshalBinary encodes e in the on-disk record layout.
func (e *Entry) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, RecordSize)
	b = append(b, e.IVInfo[:]...)
	b = append(b, e.Information[:]...)
	b = append(b, e.IVSecret[:]...)
	b = append(b, e.Secret[:]...)
	b = append(b, e.Hash[:]...)
	return b, nil
}

// UnmarshalBinary decodes one on-disk record.
func (e *Entry) UnmarshalBinary(b []byte) error {
	if len(b) != RecordSize {
		return errors.Errorf("record is %d bytes; want %d", len(b), RecordSize)
	}
	b = b[copy(e.IVInfo[:], b):]
	b = b[copy(e.Information[:], b):]
	b = b[copy(e.IVSecret[:], b):]
	b = b[copy(e.Secret[:], b):]
	copy(e.Hash[:], b)
	return nil
}

// field is a plaintext information or secret, zero padded to MaxSize.
type field [MaxSize]byte

func newField(b []byte) (field, error) {
	var f field
	if len(b) > MaxSize {
		return f, ErrFieldTooLong
	}
	for _, c := range b {
		if c == 0 {
			return f, ErrFieldInvalid
		}
	}
	copy(f[:], b)
	return f, nil
}

// bytes returns a copy of the logical value, up to the first NUL.
func (f *field) bytes() []byte {
	n := 0
	for n < MaxSize && f[n] != 0 {
		n++
	}
	out := make([]byte, n)
	copy(out, f[:n])
	return out
}

func (f *field) wipe() { zero(f[:]) }

// CheckField reports whether b can be stored as an information or secret.
func CheckField(b []byte) error {
	f, err := newField(b)
	f.wipe()
	return err
}
