// Package log provides module-scoped logging for the emulator, built on
// logrus. Warnings and errors are always emitted; debug and info entries are
// gated by a per-module mask so that hot paths stay silent unless a module
// is explicitly enabled (see the --log command line flag).
package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
}

// Disable turns off all logging output.
func Disable() {
	logrus.SetOutput(io.Discard)
	modDebugMask = 0
}

// SetOutput redirects all logging output to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
