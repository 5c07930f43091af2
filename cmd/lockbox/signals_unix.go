//go:build unix

package main

import (
	"os/signal"

	"golang.org/x/sys/unix"
)

// ignoreSignals keeps keyboard signals from stopping the program between
// a backup and the end of a save. Both UIs offer their own quit command.
func ignoreSignals() {
	signal.Ignore(unix.SIGINT, unix.SIGQUIT, unix.SIGTSTP)
}
