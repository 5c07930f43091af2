package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/awnumar/memguard"
	"github.com/pkg/errors"
)

func zero(b []byte) {
	memguard.WipeBytes(b)
}

// Zero securely wipes a byte slice from memory.
func Zero(b []byte) {
	zero(b)
}

func fillRandom(b []byte) error {
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return errors.Wrap(err, "cannot read entropy source")
	}
	return nil
}

func cbcEncrypt(key, iv, dst, src []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return errors.Wrap(err, "cannot create aes block cipher")
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(dst, src)
	return nil
}

func cbcDecrypt(key, iv, dst, src []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return errors.Wrap(err, "cannot create aes block cipher")
	}
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(dst, src)
	return nil
}

// hmacFields computes HMAC-SHA256 over the two padded fields laid end to
// end, exactly as they sit in memory before encryption.
func hmacFields(key []byte, info, sec *field, out []byte) {
	mac := hmac.New(sha256.New, key)
	mac.Write(info[:])
	mac.Write(sec[:])
	copy(out, mac.Sum(nil))
}

// Seal encrypts an (information, secret) pair into a new Entry. Each field
// gets a fresh IV and the tag covers the plaintext.
func Seal(k *SessionKey, information, secret []byte) (*Entry, error) {
	info, err := newField(information)
	if err != nil {
		return nil, errors.Wrap(err, "information")
	}
	defer info.wipe()
	sec, err := newField(secret)
	if err != nil {
		return nil, errors.Wrap(err, "secret")
	}
	defer sec.wipe()

	e := &Entry{}
	err = k.Use(func(key []byte) error {
		hmacFields(key, &info, &sec, e.Hash[:])

		if err := fillRandom(e.IVInfo[:]); err != nil {
			return err
		}
		if err := cbcEncrypt(key, e.IVInfo[:], e.Information[:], info[:]); err != nil {
			return err
		}

		if err := fillRandom(e.IVSecret[:]); err != nil {
			return err
		}
		return cbcEncrypt(key, e.IVSecret[:], e.Secret[:], sec[:])
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Open decrypts e and checks its tag. A mismatch yields ErrIntegrity: the
// key may be wrong or the record damaged, and there is no telling which.
func Open(k *SessionKey, e *Entry) (information, secret []byte, err error) {
	var info, sec field
	defer info.wipe()
	defer sec.wipe()

	var sum [HashLen]byte
	err = k.Use(func(key []byte) error {
		if err := cbcDecrypt(key, e.IVInfo[:], info[:], e.Information[:]); err != nil {
			return err
		}
		if err := cbcDecrypt(key, e.IVSecret[:], sec[:], e.Secret[:]); err != nil {
			return err
		}
		hmacFields(key, &info, &sec, sum[:])
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !hmac.Equal(sum[:], e.Hash[:]) {
		return nil, nil, ErrIntegrity
	}
	return info.bytes(), sec.bytes(), nil
}
