package vault

import (
	"io/fs"
	"os"
	"time"

	"github.com/pkg/errors"
)

// CheckAccessInterval refuses to go on when the data file was accessed less
// than interval ago, which slows down password guessing by repeated
// launches. A missing data file always passes.
func CheckAccessInterval(path string, interval time.Duration, now time.Time) error {
	if interval <= 0 {
		return nil
	}
	atime, err := accessTime(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "cannot stat data file %q", path)
	}
	if now.Sub(atime) < interval {
		return errors.Wrapf(ErrTooSoon, "wait %s before retrying", interval)
	}
	return nil
}

// Touch sets the access and modification times of path to now. A missing
// file is left alone.
func Touch(path string, now time.Time) error {
	err := os.Chtimes(path, now, now)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "cannot set access time of %q", path)
	}
	return nil
}
