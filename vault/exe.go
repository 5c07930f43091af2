package vault

import (
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ResolveExecutable finds the file the program was started from, given
// the name it was invoked with: an absolute path is used as is, a path
// with a separator is taken relative to the working directory, and a bare
// name is looked up in PATH where the first readable file wins.
func ResolveExecutable(hint string) (string, error) {
	if hint == "" {
		return "", ErrNoExecutable
	}

	if filepath.IsAbs(hint) {
		if !readableFile(hint) {
			return "", errors.Wrapf(ErrNoExecutable, "%q", hint)
		}
		return hint, nil
	}

	if strings.ContainsRune(hint, '/') || strings.ContainsRune(hint, filepath.Separator) {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "cannot get working directory")
		}
		p := filepath.Join(wd, hint)
		if !readableFile(p) {
			return "", errors.Wrapf(ErrNoExecutable, "%q", p)
		}
		return p, nil
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		p := filepath.Join(dir, hint)
		if readableFile(p) {
			if abs, err := filepath.Abs(p); err == nil {
				return abs, nil
			}
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrNoExecutable, "%q not found in PATH", hint)
}

func readableFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	fi, err := f.Stat()
	return err == nil && fi.Mode().IsRegular()
}

func hashExecutable(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, errors.Wrapf(ErrNoExecutable, "cannot open %q for hashing", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, errors.Wrapf(err, "cannot hash executable %q", path)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
