package vault

import (
	"github.com/awnumar/memguard"
	"github.com/pkg/errors"
)

// SessionKey is the 32-byte key of one session. When masked, only
// key XOR mask is kept between uses.
type SessionKey struct {
	key       [KeyLen]byte
	mask      [KeyLen]byte
	masked    bool
	destroyed bool
}

func newSessionKey(raw []byte, masked bool) *SessionKey {
	k := &SessionKey{masked: masked}
	copy(k.key[:], raw)
	if masked {
		memguard.ScrambleBytes(k.mask[:])
		xorBytes(k.key[:], k.mask[:])
	}
	return k
}

// Use hands the clear key to fn. The clear copy lives in a locked buffer
// that is wiped when fn returns, whatever the outcome.
func (k *SessionKey) Use(fn func(key []byte) error) error {
	if k == nil || k.destroyed {
		return ErrNoKey
	}
	buf := memguard.NewBuffer(KeyLen)
	defer buf.Destroy()

	raw := buf.Bytes()
	copy(raw, k.key[:])
	if k.masked {
		xorBytes(raw, k.mask[:])
	}
	return fn(raw)
}

// Masked reports whether the key is kept masked in memory.
func (k *SessionKey) Masked() bool { return k.masked }

// Destroy wipes the key and its mask. The key is unusable afterwards.
func (k *SessionKey) Destroy() {
	if k == nil {
		return
	}
	zero(k.key[:])
	zero(k.mask[:])
	k.destroyed = true
}

// CheckPassword enforces the password policy: at least MinPasswordLen
// bytes, one uppercase letter, one lowercase letter and one digit.
func CheckPassword(password []byte) error {
	if len(password) < MinPasswordLen {
		return errors.Wrapf(ErrPasswordPolicy, "at least %d characters are required", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return errors.Wrapf(ErrPasswordPolicy, "at most %d characters are allowed", MaxPasswordLen)
	}
	var upper, lower, digit bool
	for _, c := range password {
		switch {
		case 'A' <= c && c <= 'Z':
			upper = true
		case 'a' <= c && c <= 'z':
			lower = true
		case '0' <= c && c <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.Wrap(ErrPasswordPolicy, "an uppercase letter, a lowercase letter and a digit are required")
	}
	return nil
}

// DeriveKey turns a password into the session key. The password is
// stretched by iterated self-keyed AES-CBC, then bound to the executable
// found from exeHint by XORing in the SHA-256 of its content: the same
// password gives another key with another binary.
//
// password is wiped before DeriveKey returns.
func DeriveKey(password []byte, exeHint string, masked bool) (*SessionKey, error) {
	defer zero(password)

	if err := CheckPassword(password); err != nil {
		return nil, err
	}

	path, err := ResolveExecutable(exeHint)
	if err != nil {
		return nil, err
	}
	sum, err := hashExecutable(path)
	if err != nil {
		return nil, err
	}

	buf := memguard.NewBuffer(KeyLen)
	defer buf.Destroy()
	raw := buf.Bytes()
	if err := stretch(password, raw); err != nil {
		return nil, err
	}
	xorBytes(raw, sum[:])

	return newSessionKey(raw, masked), nil
}

// stretch runs the password feedback loop: the zero-padded password buffer
// is encrypted in place under its own first KeyLen bytes, with an IV bumped
// one byte per round.
func stretch(password, out []byte) error {
	seed := memguard.NewBuffer(MaxPasswordLen)
	defer seed.Destroy()
	s := seed.Bytes()
	copy(s, password)

	var iv [IVLen]byte
	for i := range iv {
		iv[i] = byte(i)
	}

	for i := 0; i < StretchRounds; i++ {
		if err := cbcEncrypt(s[:KeyLen], iv[:], s, s); err != nil {
			return err
		}
		iv[i%IVLen]++
	}
	copy(out, s[:KeyLen])
	return nil
}

func xorBytes(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
